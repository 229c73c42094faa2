// internal/handlers/type.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/services"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type TypeHandler struct {
	typeService *services.TypeService
}

func NewTypeHandler(typeService *services.TypeService) *TypeHandler {
	return &TypeHandler{typeService: typeService}
}

// GET /types
func (h *TypeHandler) GetTypes(c *gin.Context) {
	types, err := h.typeService.List(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, types)
}

// GET /types/:id
func (h *TypeHandler) GetType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	t, err := h.typeService.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, t)
}

// POST /types
func (h *TypeHandler) CreateType(c *gin.Context) {
	var req services.CreateTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.typeService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, t)
}

// PATCH /types/:id
func (h *TypeHandler) UpdateType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.typeService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, t)
}

// DELETE /types/:id
func (h *TypeHandler) DeleteType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.typeService.Remove(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
