package models

import "time"

type Lead struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	FirstName      string    `gorm:"type:varchar(20);not null" json:"first_name"`
	LastName       string    `gorm:"type:varchar(20);not null" json:"last_name"`
	Age            int       `gorm:"not null;default:0" json:"age"`
	Description    string    `gorm:"type:text" json:"description"`
	PhoneNumber    string    `gorm:"type:varchar(20)" json:"phone_number"`
	Email          string    `gorm:"type:varchar(254)" json:"email"`
	OrganizationID uint64    `gorm:"not null;index" json:"organization_id"`
	AgentID        *uint64   `gorm:"index" json:"agent_id"`
	CategoryID     *uint64   `gorm:"index" json:"category_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization Profile   `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	Agent        *Agent    `gorm:"foreignKey:AgentID;constraint:OnDelete:SET NULL" json:"agent,omitempty"`
	Category     *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// FullName returns "First Last".
func (l Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}
