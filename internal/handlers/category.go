package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/services"
)

// CategoryHandler serves category endpoints.
type CategoryHandler struct {
	categoryService *services.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// ListCategories returns the caller's categories and the uncategorized lead count.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	list, err := h.categoryService.ListCategories(viewer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryListResponse(list.Categories, list.UnassignedLeadCount))
}

// GetCategory returns a category with the leads the caller can see in it.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(viewer, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDetailDTO(*category))
}

// CreateCategory creates a category in the organizer's organization.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(viewer, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryDTO(*category))
}

// UpdateCategory renames a category.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(viewer, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// DeleteCategory deletes a category; its leads become uncategorized.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(viewer, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}
