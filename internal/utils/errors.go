// internal/utils/errors.go
package utils

import (
	"fmt"
	"net/http"

	"github.com/cueshop/billiard-backend/internal/i18n"
)

// AppError carries an HTTP status and a translatable message key through the service layer.
type AppError struct {
	Status  int
	Key     string
	Args    []interface{}
	Details interface{}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, i18n.T("en", e.Key, e.Args...))
}

// Message renders the error in the requested language.
func (e *AppError) Message(lang string) string {
	return i18n.T(lang, e.Key, e.Args...)
}

func NewAppError(status int, key string, args ...interface{}) *AppError {
	return &AppError{Status: status, Key: key, Args: args}
}

func NewValidationError(key string, details interface{}) *AppError {
	if key == "" {
		key = i18n.KeyValidationInvalid
	}
	return &AppError{Status: http.StatusBadRequest, Key: key, Details: details}
}

func NewUnauthorizedError(key string) *AppError {
	if key == "" {
		key = i18n.KeyAuthRequired
	}
	return NewAppError(http.StatusUnauthorized, key)
}

func NewForbiddenError(key string) *AppError {
	if key == "" {
		key = i18n.KeyAuthForbidden
	}
	return NewAppError(http.StatusForbidden, key)
}

func NewNotFoundError(key string, args ...interface{}) *AppError {
	return NewAppError(http.StatusNotFound, key, args...)
}

func NewConflictError(key string, args ...interface{}) *AppError {
	return NewAppError(http.StatusConflict, key, args...)
}
