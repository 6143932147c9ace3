package models

import "time"

type Category struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"type:varchar(30);not null" json:"name"`
	OrganizationID *uint64   `gorm:"index" json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization *Profile `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	Leads        []Lead   `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"leads,omitempty"`
}
