package services

import (
	"context"
	"errors"

	"github.com/skinior/skinior-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthEmailExists  = errors.New("auth email already registered")
	ErrAuthUserNotFound = errors.New("auth user not found")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, bool, error)
	FindByID(ctx context.Context, userID string) (models.User, bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

func (service *AuthService) Register(ctx context.Context, emailRaw string, password string, displayName string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrAuthEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  NormalizeDisplayName(displayName),
	}
	if err := service.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate returns ErrAuthCredentialsInvalid for both unknown emails and wrong passwords.
func (service *AuthService) Authenticate(ctx context.Context, emailRaw string, password string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}

	user, found, err := service.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(ctx context.Context, userID string) (models.User, error) {
	user, found, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, ErrAuthUserNotFound
	}
	return user, nil
}

// SetPassword replaces the password of the account with the given email.
// mustChange forces a change on next login.
func (service *AuthService) SetPassword(ctx context.Context, emailRaw string, password string, mustChange bool) (models.User, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}

	user, found, err := service.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, ErrAuthUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	if err := service.users.UpdatePassword(ctx, user.ID, string(hash), mustChange); err != nil {
		return models.User{}, err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = mustChange
	return user, nil
}
