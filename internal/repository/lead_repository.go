package repository

import (
	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLeadRepository is a GORM implementation of LeadRepository
type GormLeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new LeadRepository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &GormLeadRepository{db: db}
}

// Create creates a new lead
func (r *GormLeadRepository) Create(lead *models.Lead) error {
	return r.db.Omit(clause.Associations).Create(lead).Error
}

// List retrieves visible leads with filtering and pagination
func (r *GormLeadRepository) List(viewer authz.Viewer, filter LeadFilter) ([]models.Lead, int64, error) {
	// Count and Find each get a fresh statement.
	base := func() *gorm.DB {
		query := r.db.Model(&models.Lead{}).Scopes(authz.LeadsVisibleTo(viewer))
		if filter.Assigned != nil {
			if *filter.Assigned {
				query = query.Where("leads.agent_id IS NOT NULL")
			} else {
				query = query.Where("leads.agent_id IS NULL")
			}
		}
		if filter.CategoryID != nil {
			query = query.Where("leads.category_id = ?", *filter.CategoryID)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leads []models.Lead
	if err := base().Scopes(database.Paginate(filter.Page.Offset, filter.Page.Limit)).
		Preload("Agent.User").
		Preload("Category").
		Order("leads.created_at DESC, leads.id DESC").
		Find(&leads).Error; err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// FindByID finds a visible lead by ID with optional preloading
func (r *GormLeadRepository) FindByID(viewer authz.Viewer, id uint64, preload ...string) (*models.Lead, error) {
	var lead models.Lead
	query := r.db.Scopes(authz.LeadsVisibleTo(viewer))

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&lead, id).Error; err != nil {
		return nil, err
	}

	return &lead, nil
}

// Update updates a lead's own columns
func (r *GormLeadRepository) Update(lead *models.Lead) error {
	return r.db.Omit(clause.Associations).Save(lead).Error
}

// Delete deletes a visible lead
func (r *GormLeadRepository) Delete(viewer authz.Viewer, id uint64) error {
	res := r.db.Scopes(authz.LeadsVisibleTo(viewer)).Delete(&models.Lead{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUncategorized counts visible leads that have no category
func (r *GormLeadRepository) CountUncategorized(viewer authz.Viewer) (int64, error) {
	var count int64
	err := r.db.Model(&models.Lead{}).
		Scopes(authz.LeadsVisibleTo(viewer)).
		Where("leads.category_id IS NULL").
		Count(&count).Error
	return count, err
}
