package dto

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
)

// CategoryDTO represents a category in API responses
type CategoryDTO struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	OrganizationID *uint64   `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// CategoryDetailDTO is a category with the leads the caller can see in it
type CategoryDetailDTO struct {
	CategoryDTO
	Leads []LeadDTO `json:"leads"`
}

// CategoryListResponse lists categories with the count of uncategorized leads
type CategoryListResponse struct {
	Categories          []CategoryDTO `json:"categories"`
	UnassignedLeadCount int64         `json:"unassigned_lead_count"`
}

// ToCategoryDTO converts a Category model to CategoryDTO
func ToCategoryDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:             category.ID,
		Name:           category.Name,
		OrganizationID: category.OrganizationID,
		CreatedAt:      category.CreatedAt,
	}
}

// ToCategoryDetailDTO converts a category with its leads
func ToCategoryDetailDTO(category models.Category) CategoryDetailDTO {
	return CategoryDetailDTO{
		CategoryDTO: ToCategoryDTO(category),
		Leads:       ToLeadDTOs(category.Leads),
	}
}

// ToCategoryListResponse converts categories to CategoryListResponse
func ToCategoryListResponse(categories []models.Category, unassignedLeadCount int64) CategoryListResponse {
	items := make([]CategoryDTO, len(categories))
	for i, category := range categories {
		items[i] = ToCategoryDTO(category)
	}
	return CategoryListResponse{
		Categories:          items,
		UnassignedLeadCount: unassignedLeadCount,
	}
}
