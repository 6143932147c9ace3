package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken         = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUserNotFound          = errors.New("user not found")
	ErrNoRole                = errors.New("user has neither an organizer nor an agent role")
	ErrInvalidPasswordToken  = errors.New("password token is invalid or expired")
	ErrFailedToHashPassword  = errors.New("failed to hash password")
	ErrFailedToCreateUser    = errors.New("failed to create user")
	ErrFailedToCreateProfile = errors.New("failed to create profile")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo  repository.UserRepository
	agentRepo repository.AgentRepository
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, agentRepo repository.AgentRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		agentRepo: agentRepo,
		now:       time.Now,
	}
}

// SignupInput represents the required information to register an organizer.
type SignupInput struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// Signup registers an organizer; the organizer's profile becomes their organization.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := checkPasswordLength(input.Password); err != nil {
		return nil, err
	}

	if err := s.ensureUsernameFree(input.Username); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hashedPassword),
		IsOrganizer:  true,
	}

	if _, err := s.userRepo.CreateWithProfile(user); err != nil {
		return nil, mapCreateUserError(err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ResolveViewer maps an authenticated user to a role and organization.
// Organizer wins when both flags are set.
func (s *AuthService) ResolveViewer(userID uint64) (authz.Viewer, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return authz.Viewer{}, err
	}

	viewer := authz.Viewer{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}

	if user.IsOrganizer {
		if user.Profile == nil {
			return authz.Viewer{}, fmt.Errorf("organizer %d has no profile", user.ID)
		}
		viewer.Role = authz.RoleOrganizer
		viewer.OrganizationID = user.Profile.ID
		return viewer, nil
	}

	if user.IsAgent {
		agent, err := s.agentRepo.FindByUserID(user.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authz.Viewer{}, ErrNoRole
			}
			return authz.Viewer{}, fmt.Errorf("failed to find agent: %w", err)
		}
		viewer.Role = authz.RoleAgent
		viewer.OrganizationID = agent.OrganizationID
		viewer.AgentID = agent.ID
		return viewer, nil
	}

	return authz.Viewer{}, ErrNoRole
}

// SetupPasswordInput redeems an invitation token.
type SetupPasswordInput struct {
	Token    string
	Password string
}

// SetupPassword lets an invited user choose a password with a one-time token.
func (s *AuthService) SetupPassword(input SetupPasswordInput) (*models.User, error) {
	if strings.TrimSpace(input.Token) == "" {
		return nil, ErrInvalidPasswordToken
	}
	if err := checkPasswordLength(input.Password); err != nil {
		return nil, err
	}

	token, err := s.userRepo.FindPasswordToken(utils.HashToken(input.Token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPasswordToken
		}
		return nil, fmt.Errorf("failed to find password token: %w", err)
	}

	now := s.now()
	if !token.Usable(now) {
		return nil, ErrInvalidPasswordToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	if err := s.userRepo.RedeemPasswordToken(token, string(hashedPassword), now); err != nil {
		if errors.Is(err, repository.ErrPasswordTokenUsed) {
			return nil, ErrInvalidPasswordToken
		}
		return nil, fmt.Errorf("failed to set password: %w", err)
	}

	return s.GetUser(token.UserID)
}

// checkPasswordLength rejects passwords bcrypt cannot hash in full.
func checkPasswordLength(password string) error {
	if len(password) < constants.MinPasswordLength {
		return fieldError("password", fmt.Sprintf("must be at least %d characters", constants.MinPasswordLength))
	}
	if len(password) > constants.MaxPasswordLength {
		return fieldError("password", fmt.Sprintf("must be at most %d bytes", constants.MaxPasswordLength))
	}
	return nil
}

func (s *AuthService) ensureUsernameFree(username string) error {
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}

func mapCreateUserError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCreateUser):
		return ErrFailedToCreateUser
	case errors.Is(err, repository.ErrCreateProfile):
		return ErrFailedToCreateProfile
	default:
		return fmt.Errorf("failed to create user: %w", err)
	}
}
