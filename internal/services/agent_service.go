package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNotOrganizer         = errors.New("only organizers can perform this action")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrFailedToCreateAgent  = errors.New("failed to create agent")
	ErrTokenGenerationError = errors.New("failed to generate token")
)

// AgentService manages the agents of an organizer's organization.
type AgentService struct {
	agentRepo     repository.AgentRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	tokenTTL      time.Duration
	now           func() time.Time
}

// NewAgentService creates a new AgentService.
func NewAgentService(agentRepo repository.AgentRepository, userRepo repository.UserRepository, notifications *NotificationService, tokenTTL time.Duration) *AgentService {
	return &AgentService{
		agentRepo:     agentRepo,
		userRepo:      userRepo,
		notifications: notifications,
		tokenTTL:      tokenTTL,
		now:           time.Now,
	}
}

// AgentInput carries the user fields an organizer controls for an agent.
type AgentInput struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

func (in *AgentInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
}

// ListAgents returns the agents of the viewer's organization.
func (s *AgentService) ListAgents(viewer authz.Viewer, page repository.Page) ([]models.Agent, int64, error) {
	if !viewer.IsOrganizer() {
		return nil, 0, ErrNotOrganizer
	}

	agents, total, err := s.agentRepo.List(viewer, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, total, nil
}

// GetAgent returns one agent of the viewer's organization.
func (s *AgentService) GetAgent(viewer authz.Viewer, id uint64) (*models.Agent, error) {
	if !viewer.IsOrganizer() {
		return nil, ErrNotOrganizer
	}

	agent, err := s.agentRepo.FindByID(viewer, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to find agent: %w", err)
	}
	return agent, nil
}

// CreateAgent invites a new agent into the viewer's organization. The agent
// gets a random password nobody learns and an emailed one-time link to set
// their own.
func (s *AgentService) CreateAgent(ctx context.Context, viewer authz.Viewer, input AgentInput) (*models.Agent, error) {
	if !viewer.IsOrganizer() {
		return nil, ErrNotOrganizer
	}

	input.normalize()
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	password, err := utils.GeneratePassword()
	if err != nil {
		return nil, ErrTokenGenerationError
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	rawToken, err := utils.GenerateToken(32)
	if err != nil {
		return nil, ErrTokenGenerationError
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hashedPassword),
		IsAgent:      true,
		IsOrganizer:  false,
	}
	agent := &models.Agent{
		OrganizationID: viewer.OrganizationID,
	}
	token := &models.PasswordToken{
		TokenHash: utils.HashToken(rawToken),
		ExpiresAt: s.now().Add(s.tokenTTL),
	}

	if err := s.agentRepo.CreateWithUser(user, agent, token); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateUser), errors.Is(err, repository.ErrCreateProfile):
			return nil, mapCreateUserError(err)
		case errors.Is(err, repository.ErrCreateAgent), errors.Is(err, repository.ErrCreatePasswordToken):
			return nil, ErrFailedToCreateAgent
		default:
			return nil, fmt.Errorf("failed to create agent: %w", err)
		}
	}

	s.notifications.AgentInvited(ctx, agent, viewer.Username, rawToken, token.ExpiresAt)

	return agent, nil
}

// UpdateAgent edits the user details of an agent in the viewer's organization.
func (s *AgentService) UpdateAgent(viewer authz.Viewer, id uint64, input AgentInput) (*models.Agent, error) {
	agent, err := s.GetAgent(viewer, id)
	if err != nil {
		return nil, err
	}

	input.normalize()
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if input.Username != agent.User.Username {
		if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
	}

	agent.User.Username = input.Username
	agent.User.Email = input.Email
	agent.User.FirstName = input.FirstName
	agent.User.LastName = input.LastName

	if err := s.agentRepo.UpdateUser(&agent.User); err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	return agent, nil
}

// DeleteAgent removes an agent; their leads become unassigned.
func (s *AgentService) DeleteAgent(viewer authz.Viewer, id uint64) error {
	if !viewer.IsOrganizer() {
		return ErrNotOrganizer
	}

	if err := s.agentRepo.Delete(viewer, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAgentNotFound
		}
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	return nil
}
