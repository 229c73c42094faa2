// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/config"
	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer Mailer
}

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"-"`
	ExpiresIn int          `json:"expiresIn"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer Mailer) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		mailer: mailer,
	}
}

// Register creates an unverified account and mails its verification code.
// A delivery failure is logged; the account is kept.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing > 0 {
		return nil, utils.NewValidationError(i18n.KeyAuthUserExists, nil)
	}

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	user := &models.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    email,
		Role:     models.RoleUser,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&models.VerificationCode{UserID: user.ID, Code: code}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewValidationError(i18n.KeyAuthUserExists, nil)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerificationCode(ctx, user.Email, user.FullName, code); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to send verification email")
		}
	}

	return user, nil
}

func (s *AuthService) Verify(ctx context.Context, req *VerifyRequest) error {
	var user models.User
	err := s.db.WithContext(ctx).Preload("VerificationCode").Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewValidationError(i18n.KeyAuthVerifyFailed, nil)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if user.VerificationCode == nil || user.VerificationCode.Code != strings.TrimSpace(req.Code) {
		return utils.NewValidationError(i18n.KeyAuthVerifyFailed, nil)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("verified", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to verify user: %w", err)
		}
		if err := tx.Delete(user.VerificationCode).Error; err != nil {
			return fmt.Errorf("failed to delete verification code: %w", err)
		}
		return nil
	})
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, utils.NewValidationError(i18n.KeyAuthCredentialsMissing, nil)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewValidationError(i18n.KeyAuthUserNotFound, nil)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !user.IsVerified() {
		return nil, utils.NewAppError(http.StatusForbidden, i18n.KeyAuthEmailNotVerified)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		if errors.Is(err, models.ErrNoPassword) {
			return nil, utils.NewValidationError(i18n.KeyAuthPasswordLoginOff, nil)
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, utils.NewValidationError(i18n.KeyAuthInvalidCredentials, nil)
		}
		return nil, fmt.Errorf("failed to check password: %w", err)
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), s.cfg.JWT.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:      &user,
		Token:     token,
		ExpiresIn: s.cfg.JWT.TokenTTL * 3600, // Convert hours to seconds
	}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewUnauthorizedError("")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
