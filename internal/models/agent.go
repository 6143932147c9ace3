package models

import "time"

type Agent struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	UserID         uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	OrganizationID uint64    `gorm:"not null;index" json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	User         User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Organization Profile `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
}
