package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/terraincognita07/forgeboard/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrSetupClosed = errors.New("owner already configured")

type AuthUserRepository interface {
	CountUsers() (int64, error)
	FindByID(userID uint) (models.User, error)
	FindByNormalizedEmail(email string) (models.User, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string) error
}

type AuthService struct {
	users  AuthUserRepository
	logger *slog.Logger
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{
		users:  users,
		logger: slog.Default().With("component", "auth"),
	}
}

func (service *AuthService) NeedsSetup() (bool, error) {
	count, err := service.users.CountUsers()
	if err != nil {
		return false, classifyStoreError("count users", err)
	}
	return count == 0, nil
}

// BootstrapOwner creates the single operator account. It only works while
// the users table is empty.
func (service *AuthService) BootstrapOwner(emailRaw string, password string, displayNameRaw string) (models.User, error) {
	needsSetup, err := service.NeedsSetup()
	if err != nil {
		return models.User{}, err
	}
	if !needsSetup {
		return models.User{}, ErrSetupClosed
	}

	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.User{}, invalid("email", "invalid address")
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}
	displayName, err := NormalizeDisplayName(displayNameRaw)
	if err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         models.RoleOwner,
	}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, classifyStoreError("create owner", err)
	}
	service.logger.Info("owner created", "user_id", user.ID)
	return user, nil
}

func (service *AuthService) Authenticate(emailRaw string, passwordRaw string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrAuthCredentialsInvalid
		}
		return models.User{}, classifyStoreError("find user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, classifyStoreError("find user", err)
	}
	return user, nil
}

func (service *AuthService) ResetPassword(emailRaw string, password string) (models.User, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.User{}, invalid("email", "invalid address")
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		return models.User{}, classifyStoreError("find user", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePassword(user.ID, string(hash)); err != nil {
		return models.User{}, classifyStoreError("update password", err)
	}
	service.logger.Info("password reset", "user_id", user.ID)
	return user, nil
}
