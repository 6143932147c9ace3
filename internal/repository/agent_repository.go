package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateAgent is returned when the agent row cannot be created inside the invite transaction.
	ErrCreateAgent = errors.New("agent repository: create agent failed")
	// ErrCreatePasswordToken is returned when the invite token cannot be stored.
	ErrCreatePasswordToken = errors.New("agent repository: create password token failed")
)

// GormAgentRepository is a GORM implementation of AgentRepository
type GormAgentRepository struct {
	db *gorm.DB
}

// NewAgentRepository creates a new AgentRepository
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &GormAgentRepository{db: db}
}

// CreateWithUser creates user, profile, agent and password token atomically.
func (r *GormAgentRepository) CreateWithUser(user *models.User, agent *models.Agent, token *models.PasswordToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := createUserWithProfile(tx, user); err != nil {
			return err
		}

		agent.UserID = user.ID
		if err := tx.Omit("User", "Organization").Create(agent).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateAgent, err)
		}
		agent.User = *user

		token.UserID = user.ID
		if err := tx.Omit("User").Create(token).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreatePasswordToken, err)
		}

		return nil
	})
}

// List lists agents managed by the viewer
func (r *GormAgentRepository) List(viewer authz.Viewer, page Page) ([]models.Agent, int64, error) {
	var total int64
	if err := r.db.Model(&models.Agent{}).
		Scopes(authz.AgentsManagedBy(viewer)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var agents []models.Agent
	if err := r.db.Scopes(authz.AgentsManagedBy(viewer)).
		Scopes(database.Paginate(page.Offset, page.Limit)).
		Preload("User").
		Order("agents.id ASC").
		Find(&agents).Error; err != nil {
		return nil, 0, err
	}

	return agents, total, nil
}

// FindByID finds an agent managed by the viewer
func (r *GormAgentRepository) FindByID(viewer authz.Viewer, id uint64) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.Scopes(authz.AgentsManagedBy(viewer)).
		Preload("User").
		First(&agent, id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// FindByUserID finds the agent row of a user
func (r *GormAgentRepository) FindByUserID(userID uint64) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.Where("user_id = ?", userID).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// FindInOrganization finds an agent by ID within an organization
func (r *GormAgentRepository) FindInOrganization(organizationID, id uint64) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.Where("agents.organization_id = ?", organizationID).
		Preload("User").
		First(&agent, id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// UpdateUser saves the agent's user
func (r *GormAgentRepository) UpdateUser(user *models.User) error {
	return r.db.Omit("Profile").Save(user).Error
}

// Delete sets agent_id to NULL on the agent's leads, then deletes the agent.
// The user row is kept.
func (r *GormAgentRepository) Delete(viewer authz.Viewer, id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var agent models.Agent
		if err := tx.Scopes(authz.AgentsManagedBy(viewer)).First(&agent, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Lead{}).
			Where("agent_id = ?", agent.ID).
			Update("agent_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Agent{}, agent.ID).Error
	})
}
