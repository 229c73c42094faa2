// internal/handlers/characteristic.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/services"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type CharacteristicHandler struct {
	characteristicService *services.CharacteristicService
}

func NewCharacteristicHandler(characteristicService *services.CharacteristicService) *CharacteristicHandler {
	return &CharacteristicHandler{characteristicService: characteristicService}
}

// GET /characteristics
func (h *CharacteristicHandler) GetCharacteristics(c *gin.Context) {
	productID, ok := queryID(c, "productId")
	if !ok {
		return
	}

	characteristics, err := h.characteristicService.List(c.Request.Context(), productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, characteristics)
}

// GET /characteristics/:id
func (h *CharacteristicHandler) GetCharacteristic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	characteristic, err := h.characteristicService.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, characteristic)
}

// POST /characteristics
func (h *CharacteristicHandler) CreateCharacteristic(c *gin.Context) {
	var req services.CreateCharacteristicRequest
	if !bindJSON(c, &req) {
		return
	}

	characteristic, err := h.characteristicService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, characteristic)
}

// PATCH /characteristics/:id
func (h *CharacteristicHandler) UpdateCharacteristic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateCharacteristicRequest
	if !bindJSON(c, &req) {
		return
	}

	characteristic, err := h.characteristicService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, characteristic)
}

// DELETE /characteristics/:id
func (h *CharacteristicHandler) DeleteCharacteristic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.characteristicService.Remove(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
