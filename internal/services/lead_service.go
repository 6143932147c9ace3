package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrLeadNotFound = errors.New("lead not found")
)

// leadDetailPreloads are the relations returned with a single lead.
var leadDetailPreloads = []string{"Agent.User", "Category"}

// LeadService handles lead business logic. All lookups go through the
// viewer-scoped repository so records outside the caller's reach behave as
// if they did not exist.
type LeadService struct {
	leadRepo      repository.LeadRepository
	agentRepo     repository.AgentRepository
	categoryRepo  repository.CategoryRepository
	notifications *NotificationService
}

// NewLeadService creates a new LeadService
func NewLeadService(leadRepo repository.LeadRepository, agentRepo repository.AgentRepository, categoryRepo repository.CategoryRepository, notifications *NotificationService) *LeadService {
	return &LeadService{
		leadRepo:      leadRepo,
		agentRepo:     agentRepo,
		categoryRepo:  categoryRepo,
		notifications: notifications,
	}
}

// LeadInput represents the editable fields of a lead
type LeadInput struct {
	FirstName   string  `json:"first_name" validate:"required,max=20"`
	LastName    string  `json:"last_name" validate:"required,max=20"`
	Age         int     `json:"age" validate:"gte=0,lte=150"`
	Description string  `json:"description"`
	PhoneNumber string  `json:"phone_number" validate:"required,max=20,phone"`
	Email       string  `json:"email" validate:"required,email,max=254"`
	AgentID     *uint64 `json:"agent_id"`
	CategoryID  *uint64 `json:"category_id"`
}

// UpdateLeadInput represents a partial lead update; nil fields are left as is
type UpdateLeadInput struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=1,max=20"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1,max=20"`
	Age         *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Description *string `json:"description"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,min=1,max=20,phone"`
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
}

// LeadList is the result of listing leads. Unassigned is only filled for organizers.
type LeadList struct {
	Leads      []models.Lead
	Total      int64
	Unassigned []models.Lead
}

// ListLeads returns the leads visible to the viewer. Organizers get assigned
// leads as the main list and unassigned ones separately.
func (s *LeadService) ListLeads(viewer authz.Viewer, page repository.Page) (*LeadList, error) {
	if viewer.IsOrganizer() {
		assigned := true
		leads, total, err := s.leadRepo.List(viewer, repository.LeadFilter{Assigned: &assigned, Page: page})
		if err != nil {
			return nil, fmt.Errorf("failed to list leads: %w", err)
		}

		unassigned := false
		unassignedLeads, _, err := s.leadRepo.List(viewer, repository.LeadFilter{Assigned: &unassigned})
		if err != nil {
			return nil, fmt.Errorf("failed to list unassigned leads: %w", err)
		}
		if unassignedLeads == nil {
			unassignedLeads = []models.Lead{}
		}

		return &LeadList{Leads: leads, Total: total, Unassigned: unassignedLeads}, nil
	}

	leads, total, err := s.leadRepo.List(viewer, repository.LeadFilter{Page: page})
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return &LeadList{Leads: leads, Total: total}, nil
}

// GetLead returns a lead visible to the viewer
func (s *LeadService) GetLead(viewer authz.Viewer, id uint64) (*models.Lead, error) {
	return s.findLead(viewer, id, leadDetailPreloads...)
}

// CreateLead creates a lead in the organizer's organization and notifies them
func (s *LeadService) CreateLead(ctx context.Context, viewer authz.Viewer, input LeadInput) (*models.Lead, error) {
	if !viewer.IsOrganizer() {
		return nil, ErrNotOrganizer
	}

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	lead := &models.Lead{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Age:            input.Age,
		Description:    input.Description,
		PhoneNumber:    input.PhoneNumber,
		Email:          input.Email,
		OrganizationID: viewer.OrganizationID,
	}

	var agent *models.Agent
	if input.AgentID != nil {
		var err error
		agent, err = s.agentForLead(lead, *input.AgentID)
		if err != nil {
			return nil, err
		}
		lead.AgentID = &agent.ID
	}
	if input.CategoryID != nil {
		category, err := s.categoryForLead(viewer, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		lead.CategoryID = &category.ID
	}

	if err := s.leadRepo.Create(lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.notifications.LeadCreated(ctx, lead, viewer.Email, agent)

	return s.findLead(viewer, lead.ID, leadDetailPreloads...)
}

// UpdateLead applies a partial update to a lead of the organizer's organization
func (s *LeadService) UpdateLead(viewer authz.Viewer, id uint64, input UpdateLeadInput) (*models.Lead, error) {
	if !viewer.IsOrganizer() {
		return nil, ErrNotOrganizer
	}

	lead, err := s.findLead(viewer, id)
	if err != nil {
		return nil, err
	}

	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, fieldError("first_name", "cannot be empty")
		}
		lead.FirstName = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" {
			return nil, fieldError("last_name", "cannot be empty")
		}
		lead.LastName = name
	}
	if input.Age != nil {
		lead.Age = *input.Age
	}
	if input.Description != nil {
		lead.Description = *input.Description
	}
	if input.PhoneNumber != nil {
		lead.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Email != nil {
		lead.Email = strings.TrimSpace(*input.Email)
	}

	if err := s.leadRepo.Update(lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	return s.findLead(viewer, lead.ID, leadDetailPreloads...)
}

// DeleteLead deletes a lead of the organizer's organization
func (s *LeadService) DeleteLead(viewer authz.Viewer, id uint64) error {
	if !viewer.IsOrganizer() {
		return ErrNotOrganizer
	}

	if err := s.leadRepo.Delete(viewer, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

// AssignAgent assigns a lead to an agent of the same organization
func (s *LeadService) AssignAgent(ctx context.Context, viewer authz.Viewer, id, agentID uint64) (*models.Lead, error) {
	if !viewer.IsOrganizer() {
		return nil, ErrNotOrganizer
	}

	lead, err := s.findLead(viewer, id)
	if err != nil {
		return nil, err
	}

	agent, err := s.agentForLead(lead, agentID)
	if err != nil {
		return nil, err
	}

	lead.AgentID = &agent.ID
	if err := s.leadRepo.Update(lead); err != nil {
		return nil, fmt.Errorf("failed to assign agent: %w", err)
	}

	s.notifications.LeadAssigned(ctx, lead, agent)

	return s.findLead(viewer, lead.ID, leadDetailPreloads...)
}

// UpdateLeadCategory sets or clears the category of a lead visible to the viewer
func (s *LeadService) UpdateLeadCategory(viewer authz.Viewer, id uint64, categoryID *uint64) (*models.Lead, error) {
	lead, err := s.findLead(viewer, id)
	if err != nil {
		return nil, err
	}

	if categoryID == nil {
		lead.CategoryID = nil
	} else {
		category, err := s.categoryForLead(viewer, *categoryID)
		if err != nil {
			return nil, err
		}
		lead.CategoryID = &category.ID
	}

	if err := s.leadRepo.Update(lead); err != nil {
		return nil, fmt.Errorf("failed to update lead category: %w", err)
	}

	return s.findLead(viewer, lead.ID, leadDetailPreloads...)
}

func (s *LeadService) findLead(viewer authz.Viewer, id uint64, preload ...string) (*models.Lead, error) {
	lead, err := s.leadRepo.FindByID(viewer, id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to find lead: %w", err)
	}
	return lead, nil
}

// agentForLead loads the agent and checks it belongs to the lead's organization.
func (s *LeadService) agentForLead(lead *models.Lead, agentID uint64) (*models.Agent, error) {
	agent, err := s.agentRepo.FindInOrganization(lead.OrganizationID, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldError("agent_id", "agent does not belong to this organization")
		}
		return nil, fmt.Errorf("failed to find agent: %w", err)
	}
	return agent, nil
}

// categoryForLead loads a category the viewer can see.
func (s *LeadService) categoryForLead(viewer authz.Viewer, categoryID uint64) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(viewer, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldError("category_id", "category does not belong to this organization")
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}
