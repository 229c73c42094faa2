// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cueshop/billiard-backend/internal/i18n"
)

type ErrorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func MessageResponse(c *gin.Context, status int, key string) {
	c.JSON(status, gin.H{"message": i18n.T(GetLangFromContext(c), key)})
}

func ErrorResponse(c *gin.Context, statusCode int, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: message, Details: details})
}

// HandleError is the single adapter between service errors and HTTP responses.
// AppErrors keep their status; anything else is logged and reported as 500.
func HandleError(c *gin.Context, err error) {
	lang := GetLangFromContext(c)

	var appErr *AppError
	if errors.As(err, &appErr) {
		ErrorResponse(c, appErr.Status, appErr.Message(lang), appErr.Details)
		return
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("Unhandled error")
	ErrorResponse(c, http.StatusInternalServerError, i18n.T(lang, i18n.KeyInternalError), nil)
}

func BadRequestResponse(c *gin.Context, details interface{}) {
	HandleError(c, NewValidationError("", details))
}

func ValidationErrorResponse(c *gin.Context, errs []ValidationError) {
	HandleError(c, NewValidationError("", errs))
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return i18n.DefaultLanguage()
}

func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uint); ok {
			return id, true
		}
	}
	return 0, false
}

func GetUserRoleFromContext(c *gin.Context) (string, bool) {
	if role, exists := c.Get("user_role"); exists {
		if roleStr, ok := role.(string); ok {
			return roleStr, true
		}
	}
	return "", false
}
