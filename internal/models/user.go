package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);not null" json:"email"`
	FirstName    string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(150)" json:"last_name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	IsOrganizer  bool      `gorm:"not null;default:false" json:"is_organizer"`
	IsAgent      bool      `gorm:"not null;default:false" json:"is_agent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
