// internal/services/cart_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

// ErrCartItemNotFound is returned when a cart has no line for the requested product.
var ErrCartItemNotFound = utils.NewNotFoundError(i18n.KeyCartItemNotFound)

type CartService struct {
	db *gorm.DB
}

type AddToCartRequest struct {
	IdentityInput
	ProductID uint `json:"productId" validate:"required"`
	Quantity  *int `json:"quantity" validate:"omitempty,gt=0"`
}

type UpdateCartItemRequest struct {
	IdentityInput
	ProductID uint `json:"productId" validate:"required"`
	Quantity  *int `json:"quantity" validate:"required,gte=0"`
}

type RemoveCartItemRequest struct {
	IdentityInput
	ProductID uint `json:"productId" validate:"required"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

func (s *CartService) GetOrCreate(ctx context.Context, identity CartIdentity) (*models.Cart, error) {
	if !identity.Valid() {
		return nil, utils.NewValidationError(i18n.KeyCartNoIdentity, nil)
	}

	db := s.db.WithContext(ctx)

	cart, err := findCart(db, identity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = &models.Cart{}
		if identity.HasUser() {
			cart.UserID = identity.UserID
		}
		if identity.HasSession() {
			cart.SessionToken = identity.SessionToken
		}
		err = db.Create(cart).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a creation race with a concurrent request for the same owner.
			cart, err = findCart(db, identity)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return loadCart(db, cart.ID)
}

func (s *CartService) AddItem(ctx context.Context, cartID, productID uint, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, utils.NewValidationError(i18n.KeyCartQuantityInvalid, nil)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, cartID); err != nil {
			return err
		}

		product, err := shareProduct(tx, productID)
		if err != nil {
			return err
		}

		var item models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load cart item: %w", err)
		}

		desired := item.Quantity + quantity
		if desired > product.Count {
			return utils.NewConflictError(i18n.KeyCartInsufficientQty)
		}

		if found {
			err = tx.Model(&item).Update("quantity", desired).Error
		} else {
			err = tx.Create(&models.CartItem{CartID: cartID, ProductID: productID, Quantity: desired}).Error
		}
		if err != nil {
			return fmt.Errorf("failed to save cart item: %w", err)
		}

		return recalcCartTotal(tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return loadCart(s.db.WithContext(ctx), cartID)
}

// UpdateQty sets the absolute quantity of a line. Zero removes the line.
func (s *CartService) UpdateQty(ctx context.Context, cartID, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, utils.NewValidationError(i18n.KeyCartQuantityInvalid, nil)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, cartID); err != nil {
			return err
		}

		var item models.CartItem
		if err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return fmt.Errorf("failed to load cart item: %w", err)
		}

		if quantity == 0 {
			if err := tx.Delete(&item).Error; err != nil {
				return fmt.Errorf("failed to delete cart item: %w", err)
			}
			return recalcCartTotal(tx, cartID)
		}

		product, err := shareProduct(tx, productID)
		if err != nil {
			return err
		}
		if quantity > product.Count {
			return utils.NewConflictError(i18n.KeyCartInsufficientQty)
		}

		if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}

		return recalcCartTotal(tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return loadCart(s.db.WithContext(ctx), cartID)
}

func (s *CartService) RemoveItem(ctx context.Context, cartID, productID uint) (*models.Cart, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, cartID); err != nil {
			return err
		}

		result := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete cart item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCartItemNotFound
		}

		return recalcCartTotal(tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return loadCart(s.db.WithContext(ctx), cartID)
}

func (s *CartService) Clear(ctx context.Context, cartID uint) (*models.Cart, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, cartID); err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_amount", 0).Error
	})
	if err != nil {
		return nil, err
	}

	return loadCart(s.db.WithContext(ctx), cartID)
}

// MergeGuestCart moves the lines of the guest cart owned by sessionToken into the
// user's cart and deletes the guest cart. Merged quantities are capped at the current
// stock; lines with nothing left in stock are dropped.
func (s *CartService) MergeGuestCart(ctx context.Context, userCartID uint, sessionToken string) (*models.Cart, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, userCartID); err != nil {
			return err
		}

		var guest models.Cart
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_token = ? AND user_id IS NULL", sessionToken).
			First(&guest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load guest cart: %w", err)
		}
		if guest.ID == userCartID {
			return nil
		}

		var lines []models.CartItem
		if err := tx.Where("cart_id = ?", guest.ID).Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("failed to load guest cart items: %w", err)
		}

		for _, line := range lines {
			var product models.Product
			err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&product, line.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load product: %w", err)
			}

			var item models.CartItem
			err = tx.Where("cart_id = ? AND product_id = ?", userCartID, line.ProductID).First(&item).Error
			found := err == nil
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to load cart item: %w", err)
			}

			desired := min(item.Quantity+line.Quantity, product.Count)
			switch {
			case desired <= item.Quantity:
				continue
			case found:
				err = tx.Model(&item).Update("quantity", desired).Error
			default:
				err = tx.Create(&models.CartItem{CartID: userCartID, ProductID: line.ProductID, Quantity: desired}).Error
			}
			if err != nil {
				return fmt.Errorf("failed to merge cart item: %w", err)
			}
		}

		if err := tx.Where("cart_id = ?", guest.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete guest cart items: %w", err)
		}
		if err := tx.Delete(&guest).Error; err != nil {
			return fmt.Errorf("failed to delete guest cart: %w", err)
		}

		return recalcCartTotal(tx, userCartID)
	})
	if err != nil {
		return nil, err
	}

	return loadCart(s.db.WithContext(ctx), userCartID)
}

func findCart(db *gorm.DB, identity CartIdentity) (*models.Cart, error) {
	query := db.Model(&models.Cart{})
	switch {
	case identity.HasUser() && identity.HasSession():
		query = query.Where("user_id = ? OR session_token = ?", *identity.UserID, *identity.SessionToken)
	case identity.HasUser():
		query = query.Where("user_id = ?", *identity.UserID)
	default:
		query = query.Where("session_token = ?", *identity.SessionToken)
	}

	var cart models.Cart
	if err := query.Order("id").First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func loadCart(db *gorm.DB, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Product").
		First(&cart, cartID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(i18n.KeyCartNotFound)
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &cart, nil
}

func lockCart(tx *gorm.DB, cartID uint) error {
	var cart models.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&cart, cartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError(i18n.KeyCartNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock cart: %w", err)
	}
	return nil
}

// shareProduct reads a product under a shared lock so admin stock edits wait for the check.
func shareProduct(tx *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError(i18n.KeyProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &product, nil
}

// recalcCartTotal writes Σ(quantity × current price) back to the cart.
func recalcCartTotal(tx *gorm.DB, cartID uint) error {
	var items []models.CartItem
	if err := tx.Preload("Product").Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}

	total := 0.0
	for _, item := range items {
		if item.Product != nil {
			total += float64(item.Quantity) * item.Product.Price
		}
	}

	if err := tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_amount", utils.RoundMoney(total)).Error; err != nil {
		return fmt.Errorf("failed to update cart total: %w", err)
	}
	return nil
}

// recalcCartsHolding refreshes the totals of every cart that contains productID.
func recalcCartsHolding(tx *gorm.DB, productID uint) error {
	var cartIDs []uint
	if err := tx.Model(&models.CartItem{}).Where("product_id = ?", productID).Distinct("cart_id").Pluck("cart_id", &cartIDs).Error; err != nil {
		return fmt.Errorf("failed to find carts: %w", err)
	}
	for _, id := range cartIDs {
		if err := recalcCartTotal(tx, id); err != nil {
			return err
		}
	}
	return nil
}
