package repository

import (
	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create creates a new category
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Omit("Organization", "Leads").Create(category).Error
}

// List lists categories visible to the viewer
func (r *GormCategoryRepository) List(viewer authz.Viewer) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Scopes(authz.CategoriesVisibleTo(viewer)).
		Order("categories.name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByID finds a category visible to the viewer
func (r *GormCategoryRepository) FindByID(viewer authz.Viewer, id uint64) (*models.Category, error) {
	var category models.Category
	if err := r.db.Scopes(authz.CategoriesVisibleTo(viewer)).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Update saves a category
func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Omit("Organization", "Leads").Save(category).Error
}

// Delete sets category_id to NULL on the category's leads, then deletes it.
func (r *GormCategoryRepository) Delete(viewer authz.Viewer, id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Scopes(authz.CategoriesVisibleTo(viewer)).First(&category, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Lead{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Category{}, category.ID).Error
	})
}
