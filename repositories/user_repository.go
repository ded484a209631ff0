// File: /repositories/user_repository.go
package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"eventhub-api/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Create stores a user together with its profile and initial role. Either
// all three rows are written or none is.
func (r *UserRepository) Create(ctx context.Context, user *models.User, profile *models.Profile, role models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Groups", "Profile").Create(user).Error; err != nil {
			return err
		}
		txRepo := r.WithTx(tx)
		if err := txRepo.AddRole(ctx, user, role); err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Groups").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Groups").
		Preload("Profile").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// GetOrCreateGroup is idempotent and tolerates a concurrent insert of the
// same group name.
func (r *UserRepository) GetOrCreateGroup(ctx context.Context, role models.Role) (*models.Group, error) {
	group := models.Group{Name: role.String()}
	err := r.db.WithContext(ctx).Where(models.Group{Name: group.Name}).FirstOrCreate(&group).Error
	if err != nil {
		// Lost the race against another insert: the row exists now.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = r.db.WithContext(ctx).Where("name = ?", group.Name).First(&group).Error
		}
		if err != nil {
			return nil, err
		}
	}
	return &group, nil
}

// AddRole attaches the role's group to the user and refreshes user.Groups.
func (r *UserRepository) AddRole(ctx context.Context, user *models.User, role models.Role) error {
	group, err := r.GetOrCreateGroup(ctx, role)
	if err != nil {
		return err
	}
	for _, g := range user.Groups {
		if g.ID == group.ID {
			return nil
		}
	}
	return r.db.WithContext(ctx).Model(user).Association("Groups").Append(group)
}
