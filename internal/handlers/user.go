// internal/handlers/user.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/config"
	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/services"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
	cookies     config.CookieConfig
}

func NewUserHandler(userService *services.UserService, cookies config.CookieConfig) *UserHandler {
	return &UserHandler{
		userService: userService,
		cookies:     cookies,
	}
}

// PATCH /users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.HandleError(c, utils.NewUnauthorizedError(""))
		return
	}

	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyUserProfileUpdated),
		"user":    user,
	})
}

// DELETE /users/account
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.HandleError(c, utils.NewUnauthorizedError(""))
		return
	}

	var req services.DeleteAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), userID, req.Password); err != nil {
		utils.HandleError(c, err)
		return
	}

	http.SetCookie(c.Writer, utils.NewAuthCookie(h.cookies, "", 0))
	utils.MessageResponse(c, http.StatusOK, i18n.KeyUserAccountDeleted)
}
