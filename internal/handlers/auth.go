// internal/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/config"
	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/services"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	cookies     config.CookieConfig
}

func NewAuthHandler(authService *services.AuthService, cookies config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRegisterSuccess),
		"user":    user,
	})
}

// POST /auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req services.VerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.Verify(c.Request.Context(), &req); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.MessageResponse(c, http.StatusOK, i18n.KeyAuthVerifySuccess)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	http.SetCookie(c.Writer, utils.NewAuthCookie(h.cookies, authResponse.Token, authResponse.ExpiresIn))
	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthLoginSuccess),
		"user":      authResponse.User,
		"expiresIn": authResponse.ExpiresIn,
	})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, utils.NewAuthCookie(h.cookies, "", 0))
	utils.MessageResponse(c, http.StatusOK, i18n.KeyAuthLogoutSuccess)
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.HandleError(c, utils.NewUnauthorizedError(""))
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}
