package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside a signup or invite transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateProfile is returned when creating the user's profile fails.
	ErrCreateProfile = errors.New("user repository: create profile failed")
	// ErrPasswordTokenUsed is returned when a token was redeemed concurrently.
	ErrPasswordTokenUsed = errors.New("user repository: password token already used")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// createUserWithProfile inserts the user and its profile on tx.
func createUserWithProfile(tx *gorm.DB, user *models.User) (*models.Profile, error) {
	if err := tx.Omit("Profile").Create(user).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateUser, err)
	}

	profile := &models.Profile{UserID: user.ID}
	if err := tx.Omit("User").Create(profile).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateProfile, err)
	}

	user.Profile = profile
	return profile, nil
}

// CreateWithProfile creates a user and its profile atomically.
func (r *GormUserRepository) CreateWithProfile(user *models.User) (*models.Profile, error) {
	var profile *models.Profile
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		profile, err = createUserWithProfile(tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Profile").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindPasswordToken finds a password token by its hash
func (r *GormUserRepository) FindPasswordToken(tokenHash string) (*models.PasswordToken, error) {
	var token models.PasswordToken
	if err := r.db.Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// RedeemPasswordToken sets the user's password and consumes the token in one transaction.
func (r *GormUserRepository) RedeemPasswordToken(token *models.PasswordToken, passwordHash string, usedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PasswordToken{}).
			Where("id = ? AND used_at IS NULL", token.ID).
			Update("used_at", usedAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPasswordTokenUsed
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", token.UserID).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}

		token.UsedAt = &usedAt
		return nil
	})
}
