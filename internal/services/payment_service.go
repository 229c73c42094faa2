// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/config"
	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       stripe.PaymentIntentStatus
}

// PaymentGateway is the subset of the payment provider used for orders.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

type StripeGateway struct{}

// NewStripeGateway returns nil when no secret key is configured.
func NewStripeGateway(secretKey string) *StripeGateway {
	if secretKey == "" {
		return nil
	}
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: pi.Status}, nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: pi.Status}, nil
}

type PaymentService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	currency string
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	PaymentID    string `json:"paymentId"`
	Status       string `json:"status"`
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway, cfg config.PaymentConfig) *PaymentService {
	return &PaymentService{
		db:       db,
		gateway:  gateway,
		currency: cfg.Currency,
	}
}

// CreatePayment opens a payment intent for a pending order. An intent that is
// still payable is reused instead of creating a second one.
func (s *PaymentService) CreatePayment(ctx context.Context, orderID uint) (*PaymentIntentResponse, error) {
	if s.gateway == nil {
		return nil, utils.NewAppError(http.StatusServiceUnavailable, i18n.KeyPaymentUnavailable)
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, utils.NewConflictError(i18n.KeyOrderAlreadyPaid)
	}

	if order.PaymentID != nil && *order.PaymentID != "" {
		pi, err := s.gateway.GetIntent(ctx, *order.PaymentID)
		if err != nil {
			return nil, err
		}
		if pi.Status != stripe.PaymentIntentStatusSucceeded && pi.Status != stripe.PaymentIntentStatusCanceled {
			return intentResponse(pi), nil
		}
	}

	pi, err := s.gateway.CreateIntent(ctx, utils.ToMinorUnits(order.TotalAmount), s.currency, map[string]string{
		"order_id":     strconv.FormatUint(uint64(order.ID), 10),
		"order_number": order.OrderNumber,
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(order).Update("payment_id", pi.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to store payment id: %w", err)
	}

	return intentResponse(pi), nil
}

// ConfirmPayment syncs the order status with the state of its payment intent.
func (s *PaymentService) ConfirmPayment(ctx context.Context, orderID uint) (*models.Order, error) {
	if s.gateway == nil {
		return nil, utils.NewAppError(http.StatusServiceUnavailable, i18n.KeyPaymentUnavailable)
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentID == nil || *order.PaymentID == "" {
		return nil, utils.NewConflictError(i18n.KeyOrderNoPayment)
	}

	pi, err := s.gateway.GetIntent(ctx, *order.PaymentID)
	if err != nil {
		return nil, err
	}

	status := order.Status
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status = models.OrderStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		status = models.OrderStatusCancelled
	}

	if status != order.Status && order.Status == models.OrderStatusPending {
		if err := s.db.WithContext(ctx).Model(order).Update("status", status).Error; err != nil {
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
	}

	return s.getOrder(ctx, orderID)
}

func (s *PaymentService) getOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(i18n.KeyOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func intentResponse(pi *PaymentIntent) *PaymentIntentResponse {
	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}
}
