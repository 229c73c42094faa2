// internal/services/type_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type TypeService struct {
	db *gorm.DB
}

type CreateTypeRequest struct {
	Value string `json:"value" validate:"required,max=100"`
	Name  string `json:"name" validate:"required,max=255"`
}

type UpdateTypeRequest struct {
	Value *string `json:"value" validate:"omitempty,min=1,max=100"`
	Name  *string `json:"name" validate:"omitempty,min=1,max=255"`
}

func NewTypeService(db *gorm.DB) *TypeService {
	return &TypeService{db: db}
}

func (s *TypeService) List(ctx context.Context) ([]models.Type, error) {
	var types []models.Type
	if err := s.db.WithContext(ctx).Order("name").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list types: %w", err)
	}
	return types, nil
}

func (s *TypeService) GetByID(ctx context.Context, id uint) (*models.Type, error) {
	var t models.Type
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(i18n.KeyTypeNotFound)
		}
		return nil, fmt.Errorf("failed to get type: %w", err)
	}
	return &t, nil
}

func (s *TypeService) Create(ctx context.Context, req *CreateTypeRequest) (*models.Type, error) {
	t := &models.Type{Value: req.Value, Name: req.Name}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError(i18n.KeyTypeExists)
		}
		return nil, fmt.Errorf("failed to create type: %w", err)
	}
	return t, nil
}

func (s *TypeService) Update(ctx context.Context, id uint, req *UpdateTypeRequest) (*models.Type, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Value != nil {
		updates["value"] = *req.Value
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if len(updates) == 0 {
		return t, nil
	}

	if err := s.db.WithContext(ctx).Model(t).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError(i18n.KeyTypeExists)
		}
		return nil, fmt.Errorf("failed to update type: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *TypeService) Remove(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&models.Product{}).Where("type_id = ?", id).Count(&used).Error; err != nil {
			return fmt.Errorf("failed to check products: %w", err)
		}
		if used > 0 {
			return utils.NewConflictError(i18n.KeyTypeInUse)
		}

		result := tx.Delete(&models.Type{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete type: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return utils.NewNotFoundError(i18n.KeyTypeNotFound)
		}
		return nil
	})
}
