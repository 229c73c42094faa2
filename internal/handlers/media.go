// internal/handlers/media.go
package handlers

import (
	"bytes"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/services"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type MediaHandler struct {
	mediaService *services.MediaService
}

func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// GET /media
func (h *MediaHandler) GetMedia(c *gin.Context) {
	productID, ok := queryID(c, "productId")
	if !ok {
		return
	}

	media, err := h.mediaService.List(c.Request.Context(), productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, media)
}

// GET /media/:id
func (h *MediaHandler) GetMediaItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	media, err := h.mediaService.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, media)
}

// POST /media
func (h *MediaHandler) CreateMedia(c *gin.Context) {
	var req services.CreateMediaRequest
	if !bindJSON(c, &req) {
		return
	}

	media, err := h.mediaService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, media)
}

// PATCH /media/:id
func (h *MediaHandler) UpdateMedia(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateMediaRequest
	if !bindJSON(c, &req) {
		return
	}

	media, err := h.mediaService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, media)
}

// DELETE /media/:id
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.mediaService.Remove(c.Request.Context(), id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// POST /media/sign
func (h *MediaHandler) SignUpload(c *gin.Context) {
	var req services.SignMediaRequest
	if !bindJSON(c, &req) {
		return
	}

	signed, err := h.mediaService.Sign(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, signed)
}

// POST /media/confirm
// Accepts a single upload result or an array of them.
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	var items []services.ConfirmMediaItem
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		err = json.Unmarshal(trimmed, &items)
	case len(trimmed) > 0:
		var item services.ConfirmMediaItem
		if err = json.Unmarshal(trimmed, &item); err == nil {
			items = append(items, item)
		}
	}
	if err != nil {
		utils.HandleError(c, utils.NewValidationError(i18n.KeyMediaConfirmInvalid, err.Error()))
		return
	}

	media, err := h.mediaService.Confirm(c.Request.Context(), items)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, media)
}

// POST /media/delete-many
func (h *MediaHandler) DeleteMany(c *gin.Context) {
	var refs []services.DeleteMediaRef
	if err := c.ShouldBindJSON(&refs); err != nil {
		utils.HandleError(c, utils.NewValidationError(i18n.KeyMediaDeleteInvalid, nil))
		return
	}

	count, err := h.mediaService.DeleteMany(c.Request.Context(), refs)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"count": count})
}
