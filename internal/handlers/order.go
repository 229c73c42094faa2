// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/services"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GET /orders
// Admins may filter by any user; everyone else only sees their own orders.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	filter := services.OrderFilter{PaginationParams: utils.GetPaginationParams(c)}

	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		if !s.Valid() {
			utils.ValidationErrorResponse(c, []utils.ValidationError{{
				Field:   "status",
				Tag:     "order_status",
				Message: "status must be one of PENDING, SUCCEEDED, CANCELLED, IN_TRANSIT",
			}})
			return
		}
		filter.Status = &s
	}

	if isAdmin(c) {
		userID, ok := queryID(c, "userId")
		if !ok {
			return
		}
		filter.UserID = userID
	} else {
		userID, _ := utils.GetUserIDFromContext(c)
		filter.UserID = &userID
	}

	orders, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"orders": orders})
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	if userID, ok := utils.GetUserIDFromContext(c); ok {
		req.UserID = &userID
	}

	order, err := h.orderService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, order)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if !isAdmin(c) {
		userID, _ := utils.GetUserIDFromContext(c)
		if order.UserID == nil || *order.UserID != userID {
			utils.HandleError(c, utils.NewForbiddenError(i18n.KeyAuthForbidden))
			return
		}
	}

	utils.SuccessResponse(c, order)
}

// PATCH /orders/:id
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// DELETE /orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.orderService.Remove(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
