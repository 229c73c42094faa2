// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cueshop/billiard-backend/internal/cache"
	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type ProductService struct {
	db    *gorm.DB
	cache *cache.Cache
	media *MediaService
}

type CreateProductRequest struct {
	Title          string                `json:"title" validate:"required,max=255"`
	Description    string                `json:"description"`
	Price          *float64              `json:"price" validate:"required,gte=0"`
	Count          *int                  `json:"count" validate:"omitempty,gte=0"`
	Visible        *bool                 `json:"visible"`
	TypeID         uint                  `json:"typeId" validate:"required"`
	Characteristic *CharacteristicFields `json:"characteristic"`
}

type UpdateProductRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Count       *int     `json:"count" validate:"omitempty,gte=0"`
	Visible     *bool    `json:"visible"`
	TypeID      *uint    `json:"typeId" validate:"omitempty,gt=0"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	Search  string
	TypeID  *uint
	Visible *bool
}

func NewProductService(db *gorm.DB, cache *cache.Cache, media *MediaService) *ProductService {
	return &ProductService{
		db:    db,
		cache: cache,
		media: media,
	}
}

func (s *ProductService) SearchProducts(ctx context.Context, params ProductSearchParams) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if params.TypeID != nil {
		query = query.Where("type_id = ?", *params.TypeID)
	}
	if params.Visible != nil {
		query = query.Where("visible = ?", *params.Visible)
	}

	var products []models.Product
	err := utils.ApplyPagination(query, params.PaginationParams).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("media.id") }).
		Preload("Characteristic").
		Preload("Type").
		Order("created_at DESC").
		Order("id DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product

	found, err := s.cache.Get(ctx, cache.ProductKey(id), &product)
	if err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("Product cache read failed")
	}
	if found {
		return &product, nil
	}

	err = s.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("media.id") }).
		Preload("Characteristic").
		Preload("Type").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(i18n.KeyProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.cache.Set(ctx, cache.ProductKey(id), &product); err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("Product cache write failed")
	}

	return &product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       utils.RoundMoney(*req.Price),
		Visible:     true,
		TypeID:      req.TypeID,
	}
	if req.Count != nil {
		product.Count = *req.Count
	}
	if req.Visible != nil {
		product.Visible = *req.Visible
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureType(tx, req.TypeID); err != nil {
			return err
		}

		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		if req.Characteristic != nil {
			characteristic := req.Characteristic.toModel(product.ID)
			if err := tx.Create(characteristic).Error; err != nil {
				return fmt.Errorf("failed to create characteristic: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct applies a partial update. A price change refreshes the totals of
// every cart that holds the product in the same transaction.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, req *UpdateProductRequest) (*models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError(i18n.KeyProductNotFound)
			}
			return fmt.Errorf("failed to get product: %w", err)
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		priceChanged := false
		if req.Price != nil {
			price := utils.RoundMoney(*req.Price)
			priceChanged = price != product.Price
			updates["price"] = price
		}
		if req.Count != nil {
			updates["count"] = *req.Count
		}
		if req.Visible != nil {
			updates["visible"] = *req.Visible
		}
		if req.TypeID != nil {
			if err := ensureType(tx, *req.TypeID); err != nil {
				return err
			}
			updates["type_id"] = *req.TypeID
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if priceChanged {
			return recalcCartsHolding(tx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product with its media, characteristic and cart lines.
// Products referenced by orders are kept.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	var hosted []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError(i18n.KeyProductNotFound)
			}
			return fmt.Errorf("failed to get product: %w", err)
		}

		var ordered int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&ordered).Error; err != nil {
			return fmt.Errorf("failed to check orders: %w", err)
		}
		if ordered > 0 {
			return utils.NewConflictError(i18n.KeyProductHasOrders)
		}

		if err := tx.Model(&models.Media{}).Where("product_id = ? AND public_id IS NOT NULL", id).Pluck("public_id", &hosted).Error; err != nil {
			return fmt.Errorf("failed to load media: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Media{}).Error; err != nil {
			return fmt.Errorf("failed to delete media: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Characteristic{}).Error; err != nil {
			return fmt.Errorf("failed to delete characteristic: %w", err)
		}

		var cartIDs []uint
		if err := tx.Model(&models.CartItem{}).Where("product_id = ?", id).Distinct("cart_id").Pluck("cart_id", &cartIDs).Error; err != nil {
			return fmt.Errorf("failed to find carts: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		for _, cartID := range cartIDs {
			if err := recalcCartTotal(tx, cartID); err != nil {
				return err
			}
		}

		if err := tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)
	if s.media != nil {
		s.media.destroy(ctx, uniqueStrings(hosted))
	}
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, cache.ProductKey(id)); err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("Product cache invalidation failed")
	}
}

func ensureType(db *gorm.DB, typeID uint) error {
	var count int64
	if err := db.Model(&models.Type{}).Where("id = ?", typeID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check type: %w", err)
	}
	if count == 0 {
		return utils.NewNotFoundError(i18n.KeyTypeNotFound)
	}
	return nil
}
