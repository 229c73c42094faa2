// internal/utils/cookie.go
package utils

import (
	"net/http"

	"github.com/cueshop/billiard-backend/internal/config"
)

// NewSessionCookie builds the guest cart cookie.
func NewSessionCookie(cfg config.CookieConfig, token string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.SessionName,
		Value:    token,
		Path:     "/",
		MaxAge:   cfg.SessionTTL,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// NewAuthCookie builds the login cookie. A maxAge of zero or less expires it immediately.
func NewAuthCookie(cfg config.CookieConfig, token string, maxAge int) *http.Cookie {
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     cfg.AuthName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
