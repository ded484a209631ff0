// File: /controllers/category_controller.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eventhub-api/middleware"
	"eventhub-api/services"
	"eventhub-api/utils"
)

const categoriesPath = "/categories"

type CategoryController struct {
	categories *services.CategoryService
	log        *logrus.Entry
}

func NewCategoryController(categories *services.CategoryService, l *logrus.Logger) *CategoryController {
	return &CategoryController{
		categories: categories,
		log:        l.WithField("from", "category-controller"),
	}
}

type CategoryRequest struct {
	Name        string `form:"name" json:"name" binding:"required,max=100"`
	Description string `form:"description" json:"description"`
}

func (cc *CategoryController) GetCategories(c *gin.Context) {
	categories, err := cc.categories.List(c.Request.Context())
	if err != nil {
		renderError(c, cc.log, err)
		return
	}
	utils.SendPage(c, "events/category_list", gin.H{"categories": categories})
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RedirectWithFlash(c, utils.FlashError, "Category name is required.", categoriesPath)
		return
	}

	if _, err := cc.categories.Create(c.Request.Context(), user, services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	}); err != nil {
		redirectWithError(c, cc.log, err, categoriesPath)
		return
	}
	utils.RedirectWithFlash(c, utils.FlashSuccess, "Category created successfully!", categoriesPath)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RedirectWithFlash(c, utils.FlashError, "Category name is required.", categoriesPath)
		return
	}

	if _, err := cc.categories.Update(c.Request.Context(), c.Param("id"), services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	}); err != nil {
		redirectWithError(c, cc.log, err, categoriesPath)
		return
	}
	utils.RedirectWithFlash(c, utils.FlashSuccess, "Category updated successfully!", categoriesPath)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	if err := cc.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		redirectWithError(c, cc.log, err, categoriesPath)
		return
	}
	utils.RedirectWithFlash(c, utils.FlashSuccess, "Category deleted successfully!", categoriesPath)
}
