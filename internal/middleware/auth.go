// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

var authCookieName = "token"

// SetAuthCookieName sets the cookie the access gate reads the token from.
func SetAuthCookieName(name string) {
	if name != "" {
		authCookieName = name
	}
}

// tokenFromRequest reads the auth cookie first and falls back to a Bearer header.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(authCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func setClaims(c *gin.Context, claims *utils.JWTClaims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
	c.Set("user_role", claims.Role)
}

// RequireRole rejects requests without a valid token (401) and, when roles are
// given, requests whose token carries none of them (403).
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			utils.HandleError(c, utils.NewUnauthorizedError(i18n.KeyAuthRequired))
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.HandleError(c, utils.NewUnauthorizedError(i18n.KeyAuthInvalidToken))
			return
		}

		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			utils.HandleError(c, utils.NewForbiddenError(i18n.KeyAuthForbidden))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func AuthRequired() gin.HandlerFunc {
	return RequireRole()
}

func AdminRequired() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// OptionalAuth exposes the caller's claims when a valid token is present and never rejects.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFromRequest(c); token != "" {
			if claims, err := utils.ValidateJWT(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func hasRole(role string, roles []models.UserRole) bool {
	for _, r := range roles {
		if string(r) == role {
			return true
		}
	}
	return false
}
