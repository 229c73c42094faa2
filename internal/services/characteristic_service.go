// internal/services/characteristic_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/cache"
	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type CharacteristicService struct {
	db    *gorm.DB
	cache *cache.Cache
}

type CharacteristicFields struct {
	Height   *float64 `json:"height" validate:"omitempty,gte=0"`
	Weight   *float64 `json:"weight" validate:"omitempty,gte=0"`
	Material *string  `json:"material" validate:"omitempty,max=255"`
	Wood     *string  `json:"wood" validate:"omitempty,max=255"`
	Master   *string  `json:"master" validate:"omitempty,max=255"`
	Country  *string  `json:"country" validate:"omitempty,max=255"`
	Parts    *string  `json:"parts" validate:"omitempty,max=255"`
}

type CreateCharacteristicRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	CharacteristicFields
}

type UpdateCharacteristicRequest struct {
	CharacteristicFields
}

func (f *CharacteristicFields) toModel(productID uint) *models.Characteristic {
	return &models.Characteristic{
		ProductID: productID,
		Height:    f.Height,
		Weight:    f.Weight,
		Material:  f.Material,
		Wood:      f.Wood,
		Master:    f.Master,
		Country:   f.Country,
		Parts:     f.Parts,
	}
}

func (f *CharacteristicFields) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if f.Height != nil {
		updates["height"] = *f.Height
	}
	if f.Weight != nil {
		updates["weight"] = *f.Weight
	}
	if f.Material != nil {
		updates["material"] = *f.Material
	}
	if f.Wood != nil {
		updates["wood"] = *f.Wood
	}
	if f.Master != nil {
		updates["master"] = *f.Master
	}
	if f.Country != nil {
		updates["country"] = *f.Country
	}
	if f.Parts != nil {
		updates["parts"] = *f.Parts
	}
	return updates
}

func NewCharacteristicService(db *gorm.DB, cache *cache.Cache) *CharacteristicService {
	return &CharacteristicService{db: db, cache: cache}
}

func (s *CharacteristicService) List(ctx context.Context, productID *uint) ([]models.Characteristic, error) {
	query := s.db.WithContext(ctx).Model(&models.Characteristic{})
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}

	var characteristics []models.Characteristic
	if err := query.Order("id").Find(&characteristics).Error; err != nil {
		return nil, fmt.Errorf("failed to list characteristics: %w", err)
	}
	return characteristics, nil
}

func (s *CharacteristicService) GetByID(ctx context.Context, id uint) (*models.Characteristic, error) {
	var c models.Characteristic
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(i18n.KeyCharacteristicNotFound)
		}
		return nil, fmt.Errorf("failed to get characteristic: %w", err)
	}
	return &c, nil
}

func (s *CharacteristicService) Create(ctx context.Context, req *CreateCharacteristicRequest) (*models.Characteristic, error) {
	db := s.db.WithContext(ctx)
	if err := ensureProduct(db, req.ProductID); err != nil {
		return nil, err
	}

	c := req.toModel(req.ProductID)
	if err := db.Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError(i18n.KeyCharacteristicExists)
		}
		return nil, fmt.Errorf("failed to create characteristic: %w", err)
	}

	s.invalidate(ctx, c.ProductID)
	return c, nil
}

func (s *CharacteristicService) Update(ctx context.Context, id uint, req *UpdateCharacteristicRequest) (*models.Characteristic, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updates := req.updates(); len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update characteristic: %w", err)
		}
	}

	s.invalidate(ctx, c.ProductID)
	return s.GetByID(ctx, id)
}

func (s *CharacteristicService) Remove(ctx context.Context, id uint) error {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.Characteristic{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete characteristic: %w", err)
	}

	s.invalidate(ctx, c.ProductID)
	return nil
}

func (s *CharacteristicService) invalidate(ctx context.Context, productID uint) {
	if err := s.cache.Delete(ctx, cache.ProductKey(productID)); err != nil {
		logrus.WithError(err).WithField("product_id", productID).Warn("Product cache invalidation failed")
	}
}
