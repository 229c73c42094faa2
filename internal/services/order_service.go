// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

const (
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderNumberAttempts = 5
)

type OrderService struct {
	db          *gorm.DB
	orderSuffix func() string
	now         func() time.Time
}

type OrderItemInput struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderRequest struct {
	UserID   *uint            `json:"-"`
	FullName string           `json:"fullName" validate:"required,max=255"`
	Email    string           `json:"email" validate:"required,email"`
	Phone    string           `json:"phone" validate:"required,max=50"`
	Address  string           `json:"address" validate:"required"`
	Comment  *string          `json:"comment"`
	Items    []OrderItemInput `json:"items" validate:"dive"`
}

type UpdateOrderRequest struct {
	Status       *models.OrderStatus `json:"status" validate:"omitempty,order_status"`
	TrackingCode *string             `json:"trackingCode"`
	PaymentID    *string             `json:"paymentId"`
	FullName     *string             `json:"fullName" validate:"omitempty,min=1,max=255"`
	Email        *string             `json:"email" validate:"omitempty,email"`
	Phone        *string             `json:"phone" validate:"omitempty,min=1,max=50"`
	Address      *string             `json:"address" validate:"omitempty,min=1"`
	Comment      *string             `json:"comment"`
}

type OrderFilter struct {
	utils.PaginationParams
	Status *models.OrderStatus
	UserID *uint
}

func NewOrderService(db *gorm.DB) (*OrderService, error) {
	suffix, err := nanoid.CustomASCII(orderNumberAlphabet, 6)
	if err != nil {
		return nil, fmt.Errorf("failed to create order number generator: %w", err)
	}

	return &OrderService{
		db:          db,
		orderSuffix: suffix,
		now:         time.Now,
	}, nil
}

// NewOrderNumber formats ORD-YYYYMMDD-XXXXXX for the current date.
func (s *OrderService) NewOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), s.orderSuffix())
}

func (s *OrderService) Create(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, utils.NewValidationError(i18n.KeyOrderEmpty, nil)
	}

	db := s.db.WithContext(ctx)

	ids := make([]uint, 0, len(req.Items))
	seen := make(map[uint]bool, len(req.Items))
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	var products []models.Product
	if err := db.Select("id", "price").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	prices := make(map[uint]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	total := 0.0
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		price, ok := prices[item.ProductID]
		if !ok {
			return nil, utils.NewNotFoundError(i18n.KeyOrderProductNotFound, item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, utils.NewValidationError(i18n.KeyOrderQuantityInvalid, nil)
		}
		total += float64(item.Quantity) * price
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	order := &models.Order{
		UserID:      req.UserID,
		TotalAmount: utils.RoundMoney(total),
		Status:      models.OrderStatusPending,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Comment:     req.Comment,
	}

	for attempt := 1; ; attempt++ {
		order.ID = 0
		order.OrderNumber = s.NewOrderNumber()
		order.Items = cloneOrderItems(items)

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(order).Error
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if attempt == orderNumberAttempts {
			logrus.WithField("order_number", order.OrderNumber).Error("Order number collisions exhausted retries")
			return nil, utils.NewAppError(http.StatusInternalServerError, i18n.KeyOrderNumberExhausted)
		}
		logrus.WithField("order_number", order.OrderNumber).Warn("Order number collision, retrying")
	}

	return s.GetByID(ctx, order.ID)
}

func cloneOrderItems(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	return out
}

func (s *OrderService) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(i18n.KeyOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var orders []models.Order
	err := utils.ApplyPagination(query, filter.PaginationParams).
		Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) Update(ctx context.Context, id uint, req *UpdateOrderRequest) (*models.Order, error) {
	updates := map[string]interface{}{}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, utils.NewValidationError("", nil)
		}
		updates["status"] = *req.Status
	}
	if req.TrackingCode != nil {
		updates["tracking_code"] = *req.TrackingCode
	}
	if req.PaymentID != nil {
		updates["payment_id"] = *req.PaymentID
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Comment != nil {
		updates["comment"] = *req.Comment
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError(i18n.KeyOrderNotFound)
			}
			return fmt.Errorf("failed to get order: %w", err)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *OrderService) Remove(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		result := tx.Delete(&models.Order{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return utils.NewNotFoundError(i18n.KeyOrderNotFound)
		}
		return nil
	})
}
