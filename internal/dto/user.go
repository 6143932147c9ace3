package dto

import (
	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsOrganizer bool   `json:"is_organizer"`
	IsAgent     bool   `json:"is_agent"`
}

// MeDTO is the current user together with the resolved role
type MeDTO struct {
	UserDTO
	Role           authz.Role `json:"role,omitempty"`
	OrganizationID uint64     `json:"organization_id,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		IsOrganizer: user.IsOrganizer,
		IsAgent:     user.IsAgent,
	}
}

// ToMeDTO converts a user and its viewer to MeDTO
func ToMeDTO(user models.User, viewer authz.Viewer) MeDTO {
	return MeDTO{
		UserDTO:        ToUserDTO(user),
		Role:           viewer.Role,
		OrganizationID: viewer.OrganizationID,
	}
}
