// File: /services/category_service.go
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"eventhub-api/models"
	"eventhub-api/repositories"
)

type CategoryService struct {
	categories *repositories.CategoryRepository
	log        *logrus.Entry
}

func NewCategoryService(categories *repositories.CategoryRepository, l *logrus.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		log:        l.WithField("from", "category-service"),
	}
}

type CategoryInput struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

func (in *CategoryInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || len(in.Name) > 100 {
		return validationError("name must be between 1 and 100 characters")
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, creator *models.User, in CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	category := &models.Category{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedByID: &creator.ID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.log.WithField("category_id", category.ID).Info("category created")
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category")
	}
	if err := s.categories.Update(ctx, category, in.Name, in.Description); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes the category and, with it, its events and their RSVPs.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return notFound(err, "category")
	}
	s.log.WithField("category_id", id).Info("category deleted")
	return nil
}
