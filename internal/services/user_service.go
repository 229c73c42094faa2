// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type UpdateProfileRequest struct {
	FullName        *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=255"`
	CurrentPassword string  `json:"currentPassword,omitempty"`
	NewPassword     *string `json:"newPassword,omitempty" validate:"omitempty,min=6"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UpdateProfile changes the caller's name and, when the current password
// matches, their password. Accounts without a password may set one directly.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewUnauthorizedError("")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, utils.NewValidationError(i18n.KeyValidationInvalid, []utils.ValidationError{{Field: "fullName", Tag: "required", Message: "fullName is required"}})
		}
		user.FullName = name
	}

	if req.NewPassword != nil {
		if err := checkCurrentPassword(&user, req.CurrentPassword); err != nil {
			return nil, err
		}
		if err := user.SetPassword(*req.NewPassword); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

// DeleteAccount removes the user with their cart and pending verification
// code. Orders stay on record with the owner detached.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint, password string) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewUnauthorizedError("")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(password); err != nil {
		if errors.Is(err, models.ErrNoPassword) || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return utils.NewValidationError(i18n.KeyAuthInvalidCredentials, nil)
		}
		return fmt.Errorf("failed to check password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach orders: %w", err)
		}
		if err := tx.Model(&models.AuditLog{}).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach audit logs: %w", err)
		}

		var cartIDs []uint
		if err := tx.Model(&models.Cart{}).Where("user_id = ?", userID).Pluck("id", &cartIDs).Error; err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(cartIDs) > 0 {
			if err := tx.Where("cart_id IN ?", cartIDs).Delete(&models.CartItem{}).Error; err != nil {
				return fmt.Errorf("failed to delete cart items: %w", err)
			}
			if err := tx.Delete(&models.Cart{}, cartIDs).Error; err != nil {
				return fmt.Errorf("failed to delete cart: %w", err)
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.VerificationCode{}).Error; err != nil {
			return fmt.Errorf("failed to delete verification code: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		return nil
	})
}

func checkCurrentPassword(user *models.User, password string) error {
	err := user.CheckPassword(password)
	switch {
	case err == nil, errors.Is(err, models.ErrNoPassword):
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return utils.NewValidationError(i18n.KeyAuthInvalidCredentials, nil)
	default:
		return fmt.Errorf("failed to check password: %w", err)
	}
}
