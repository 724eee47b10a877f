package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/pkg/errors"
)

// UserService manages owner accounts. There are no passwords: the verification
// service proves ownership of an email and this service only stores profiles.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a user service.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, fmt.Errorf("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// RegisterInput carries the fields collected during sign-up.
type RegisterInput struct {
	Email       string
	FullName    string
	CountryName string
}

// Register creates an owner account. The email must be unused and the country
// must be a recognised name.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensuredContext(ctx)

	email := strings.TrimSpace(strings.ToLower(input.Email))
	fullName := strings.TrimSpace(input.FullName)
	country := strings.TrimSpace(input.CountryName)

	if email == "" || fullName == "" {
		return nil, errors.NewBadRequest("Email and full name are required")
	}
	canonical, ok := IsValidCountry(country)
	if !ok {
		return nil, errors.NewBadRequest("Unknown country name")
	}

	user := &models.User{
		Email:       email,
		FullName:    fullName,
		CountryName: canonical,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, errors.NewConflict("An account with this email already exists")
		}
		return nil, fmt.Errorf("user service: create: %w", err)
	}

	return user, nil
}

// GetByEmail loads a user by email, returning ErrNotFound when absent.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensuredContext(ctx)

	email = strings.TrimSpace(strings.ToLower(email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("Account not found")
		}
		return nil, fmt.Errorf("user service: get by email: %w", err)
	}
	return &user, nil
}

// GetByID loads a user by primary key.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensuredContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("Account not found")
		}
		return nil, fmt.Errorf("user service: get by id: %w", err)
	}
	return &user, nil
}

// UpdateProfileInput carries optional profile changes; empty fields are left untouched.
type UpdateProfileInput struct {
	FullName    *string
	CountryName *string
}

// UpdateProfile applies profile changes for the user. Email is immutable: it
// is the account identity that verification codes are bound to.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	ctx = ensuredContext(ctx)

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, errors.NewBadRequest("Full name cannot be empty")
		}
		updates["full_name"] = name
	}
	if input.CountryName != nil {
		canonical, ok := IsValidCountry(strings.TrimSpace(*input.CountryName))
		if !ok {
			return nil, errors.NewBadRequest("Unknown country name")
		}
		updates["country_name"] = canonical
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: update profile: %w", err)
	}

	return user, nil
}
