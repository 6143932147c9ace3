package models

import "time"

// Profile anchors an organization. Every user owns exactly one, created in the
// same transaction as the user. Leads, agents and categories reference the
// organizer's profile as their organization.
type Profile struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
