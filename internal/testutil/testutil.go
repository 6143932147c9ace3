// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database that is closed with the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// CreateOrganizer inserts an organizer with its profile and returns the matching viewer.
func CreateOrganizer(t *testing.T, db *gorm.DB, username string) (*models.User, authz.Viewer) {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		IsOrganizer:  true,
	}
	require.NoError(t, db.Omit("Profile").Create(user).Error)

	profile := &models.Profile{UserID: user.ID}
	require.NoError(t, db.Omit("User").Create(profile).Error)
	user.Profile = profile

	return user, authz.Viewer{
		UserID:         user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           authz.RoleOrganizer,
		OrganizationID: profile.ID,
	}
}

// CreateAgent inserts an agent user in the organization and returns the matching viewer.
func CreateAgent(t *testing.T, db *gorm.DB, organizationID uint64, username string) (*models.Agent, authz.Viewer) {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		IsAgent:      true,
	}
	require.NoError(t, db.Omit("Profile").Create(user).Error)
	require.NoError(t, db.Omit("User").Create(&models.Profile{UserID: user.ID}).Error)

	agent := &models.Agent{UserID: user.ID, OrganizationID: organizationID}
	require.NoError(t, db.Omit("User", "Organization").Create(agent).Error)
	agent.User = *user

	return agent, authz.Viewer{
		UserID:         user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           authz.RoleAgent,
		OrganizationID: organizationID,
		AgentID:        agent.ID,
	}
}

// CreateCategory inserts a category owned by the organization.
func CreateCategory(t *testing.T, db *gorm.DB, organizationID uint64, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, OrganizationID: &organizationID}
	require.NoError(t, db.Omit("Organization", "Leads").Create(category).Error)
	return category
}

// LeadOption customizes a lead fixture.
type LeadOption func(*models.Lead)

// WithAgent assigns the lead fixture to an agent.
func WithAgent(agentID uint64) LeadOption {
	return func(l *models.Lead) { l.AgentID = &agentID }
}

// WithCategory puts the lead fixture in a category.
func WithCategory(categoryID uint64) LeadOption {
	return func(l *models.Lead) { l.CategoryID = &categoryID }
}

// CreateLead inserts a lead in the organization.
func CreateLead(t *testing.T, db *gorm.DB, organizationID uint64, firstName string, opts ...LeadOption) *models.Lead {
	t.Helper()

	lead := &models.Lead{
		FirstName:      firstName,
		LastName:       "Doe",
		Age:            30,
		PhoneNumber:    "+81 90-0000-0000",
		Email:          firstName + "@lead.example.com",
		OrganizationID: organizationID,
	}
	for _, opt := range opts {
		opt(lead)
	}
	require.NoError(t, db.Omit("Organization", "Agent", "Category").Create(lead).Error)
	return lead
}
