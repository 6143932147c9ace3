package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryService provides business logic for lead categories.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	leadRepo     repository.LeadRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryRepo repository.CategoryRepository, leadRepo repository.LeadRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		leadRepo:     leadRepo,
	}
}

// CategoryInput represents the editable fields of a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=30"`
}

// CategoryList is the category overview of an organization.
type CategoryList struct {
	Categories []models.Category
	// UnassignedLeadCount counts visible leads without a category.
	UnassignedLeadCount int64
}

// ListCategories returns the viewer's categories and the number of their
// visible leads that have none.
func (s *CategoryService) ListCategories(viewer authz.Viewer) (*CategoryList, error) {
	categories, err := s.categoryRepo.List(viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	count, err := s.leadRepo.CountUncategorized(viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to count uncategorized leads: %w", err)
	}

	return &CategoryList{Categories: categories, UnassignedLeadCount: count}, nil
}

// GetCategory returns a category with the leads in it the viewer can see.
func (s *CategoryService) GetCategory(viewer authz.Viewer, id uint64) (*models.Category, error) {
	category, err := s.findCategory(viewer, id)
	if err != nil {
		return nil, err
	}

	leads, _, err := s.leadRepo.List(viewer, repository.LeadFilter{CategoryID: &category.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list category leads: %w", err)
	}
	category.Leads = leads

	return category, nil
}

// CreateCategory creates a category in the organizer's organization.
func (s *CategoryService) CreateCategory(viewer authz.Viewer, input CategoryInput) (*models.Category, error) {
	if !viewer.IsOrganizer() {
		return nil, ErrNotOrganizer
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	orgID := viewer.OrganizationID
	category := &models.Category{
		Name:           input.Name,
		OrganizationID: &orgID,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// UpdateCategory renames a category of the organizer's organization.
func (s *CategoryService) UpdateCategory(viewer authz.Viewer, id uint64, input CategoryInput) (*models.Category, error) {
	if !viewer.IsOrganizer() {
		return nil, ErrNotOrganizer
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	category, err := s.findCategory(viewer, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory deletes a category; its leads become uncategorized.
func (s *CategoryService) DeleteCategory(viewer authz.Viewer, id uint64) error {
	if !viewer.IsOrganizer() {
		return ErrNotOrganizer
	}

	if err := s.categoryRepo.Delete(viewer, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) findCategory(viewer authz.Viewer, id uint64) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(viewer, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}
