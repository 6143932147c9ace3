package repository

import (
	"time"

	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/models"
)

// Page selects a window of a list query. A zero Limit disables paging.
type Page struct {
	Offset int
	Limit  int
}

// LeadFilter narrows a viewer-scoped lead listing.
type LeadFilter struct {
	// Assigned, when set, keeps only leads with (true) or without (false) an agent.
	Assigned   *bool
	CategoryID *uint64
	Page       Page
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithProfile creates a user and its profile in a single transaction.
	CreateWithProfile(user *models.User) (*models.Profile, error)

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindPasswordToken finds a password token by its hash
	FindPasswordToken(tokenHash string) (*models.PasswordToken, error)

	// RedeemPasswordToken stores the new password hash and marks the token used.
	RedeemPasswordToken(token *models.PasswordToken, passwordHash string, usedAt time.Time) error
}

// AgentRepository defines the interface for agent data access. Every method
// is restricted to the agents the viewer manages.
type AgentRepository interface {
	// CreateWithUser creates the agent's user, profile, agent row and
	// password token in a single transaction.
	CreateWithUser(user *models.User, agent *models.Agent, token *models.PasswordToken) error

	// List lists agents managed by the viewer
	List(viewer authz.Viewer, page Page) ([]models.Agent, int64, error)

	// FindByID finds an agent managed by the viewer
	FindByID(viewer authz.Viewer, id uint64) (*models.Agent, error)

	// FindByUserID finds the agent row of a user regardless of viewer
	FindByUserID(userID uint64) (*models.Agent, error)

	// FindInOrganization finds an agent by ID within an organization
	FindInOrganization(organizationID, id uint64) (*models.Agent, error)

	// UpdateUser saves changes to the agent's user
	UpdateUser(user *models.User) error

	// Delete detaches the agent's leads and removes the agent
	Delete(viewer authz.Viewer, id uint64) error
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// Create creates a new category
	Create(category *models.Category) error

	// List lists categories visible to the viewer
	List(viewer authz.Viewer) ([]models.Category, error)

	// FindByID finds a category visible to the viewer
	FindByID(viewer authz.Viewer, id uint64) (*models.Category, error)

	// Update saves a category
	Update(category *models.Category) error

	// Delete detaches the category's leads and removes the category
	Delete(viewer authz.Viewer, id uint64) error
}

// LeadRepository defines the interface for lead data access. Every read and
// write goes through authz.LeadsVisibleTo.
type LeadRepository interface {
	// Create creates a new lead
	Create(lead *models.Lead) error

	// List lists leads visible to the viewer
	List(viewer authz.Viewer, filter LeadFilter) ([]models.Lead, int64, error)

	// FindByID finds a lead visible to the viewer with optional preloading
	FindByID(viewer authz.Viewer, id uint64, preload ...string) (*models.Lead, error)

	// Update saves a lead's columns without touching associations
	Update(lead *models.Lead) error

	// Delete deletes a lead visible to the viewer
	Delete(viewer authz.Viewer, id uint64) error

	// CountUncategorized counts visible leads without a category
	CountUncategorized(viewer authz.Viewer) (int64, error)
}
