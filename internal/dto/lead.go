package dto

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/utils"
)

// LeadAgentDTO is the agent summary embedded in a lead
type LeadAgentDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CategorySummaryDTO is the category summary embedded in a lead
type CategorySummaryDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// LeadDTO represents a lead in API responses
type LeadDTO struct {
	ID             uint64              `json:"id"`
	FirstName      string              `json:"first_name"`
	LastName       string              `json:"last_name"`
	Age            int                 `json:"age"`
	Description    string              `json:"description"`
	PhoneNumber    string              `json:"phone_number"`
	Email          string              `json:"email"`
	OrganizationID uint64              `json:"organization_id"`
	AgentID        *uint64             `json:"agent_id"`
	CategoryID     *uint64             `json:"category_id"`
	Agent          *LeadAgentDTO       `json:"agent,omitempty"`
	Category       *CategorySummaryDTO `json:"category,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// LeadListResponse is the lead list. UnassignedLeads is only present for organizers.
type LeadListResponse struct {
	Leads           []LeadDTO                `json:"leads"`
	UnassignedLeads *[]LeadDTO               `json:"unassigned_leads,omitempty"`
	Pagination      utils.PaginationResponse `json:"pagination"`
}

// ToLeadDTO converts a Lead model to LeadDTO
func ToLeadDTO(lead models.Lead) LeadDTO {
	dto := LeadDTO{
		ID:             lead.ID,
		FirstName:      lead.FirstName,
		LastName:       lead.LastName,
		Age:            lead.Age,
		Description:    lead.Description,
		PhoneNumber:    lead.PhoneNumber,
		Email:          lead.Email,
		OrganizationID: lead.OrganizationID,
		AgentID:        lead.AgentID,
		CategoryID:     lead.CategoryID,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}

	// Include agent if preloaded
	if lead.Agent != nil {
		dto.Agent = &LeadAgentDTO{
			ID:       lead.Agent.ID,
			Username: lead.Agent.User.Username,
			Email:    lead.Agent.User.Email,
		}
	}

	// Include category if preloaded
	if lead.Category != nil {
		dto.Category = &CategorySummaryDTO{
			ID:   lead.Category.ID,
			Name: lead.Category.Name,
		}
	}

	return dto
}

// ToLeadDTOs converts a slice of leads
func ToLeadDTOs(leads []models.Lead) []LeadDTO {
	items := make([]LeadDTO, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadDTO(lead)
	}
	return items
}

// ToLeadListResponse converts leads to LeadListResponse
func ToLeadListResponse(leads, unassigned []models.Lead, pagination utils.PaginationResponse) LeadListResponse {
	resp := LeadListResponse{
		Leads:      ToLeadDTOs(leads),
		Pagination: pagination,
	}
	if unassigned != nil {
		items := ToLeadDTOs(unassigned)
		resp.UnassignedLeads = &items
	}
	return resp
}
