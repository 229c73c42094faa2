// internal/services/identity_service.go
package services

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cueshop/billiard-backend/internal/config"
	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/utils"
)

// MaxSessionTokenLen matches the width of carts.session_token.
const MaxSessionTokenLen = 64

// CartIdentity owns a cart. Only populated fields take part in lookups.
type CartIdentity struct {
	UserID       *uint
	SessionToken *string
}

func (id CartIdentity) HasUser() bool {
	return id.UserID != nil && *id.UserID > 0
}

func (id CartIdentity) HasSession() bool {
	return id.SessionToken != nil && *id.SessionToken != ""
}

func (id CartIdentity) Valid() bool {
	return id.HasUser() || id.HasSession()
}

// IdentityInput is the part of a cart request body that may name the owner explicitly.
type IdentityInput struct {
	UserID       *uint   `json:"userId"`
	SessionToken *string `json:"sessionToken" validate:"omitempty,max=64"`
}

type IdentityResolver struct {
	cookies  config.CookieConfig
	newToken func() string
}

func NewIdentityResolver(cookies config.CookieConfig) *IdentityResolver {
	return &IdentityResolver{
		cookies:  cookies,
		newToken: uuid.NewString,
	}
}

// Resolve derives the cart owner from the body, then the authenticated user, then the
// session cookie. When nothing identifies the caller and mint is set, a new session
// token is generated and returned together with the cookie that carries it.
func (r *IdentityResolver) Resolve(in IdentityInput, req *http.Request, authUserID uint, mint bool) (CartIdentity, *http.Cookie, error) {
	identity := CartIdentity{}
	if in.UserID != nil && *in.UserID > 0 {
		identity.UserID = in.UserID
	}
	if in.SessionToken != nil {
		token := strings.TrimSpace(*in.SessionToken)
		if len(token) > MaxSessionTokenLen {
			return CartIdentity{}, nil, utils.NewValidationError(i18n.KeyValidationInvalid, []utils.ValidationError{{
				Field:   "sessionToken",
				Tag:     "max",
				Message: "sessionToken must be at most 64",
			}})
		}
		if token != "" {
			identity.SessionToken = &token
		}
	}

	if identity.Valid() {
		return identity, nil, nil
	}

	if authUserID > 0 {
		id := authUserID
		return CartIdentity{UserID: &id}, nil, nil
	}

	if token, ok := r.GuestToken(req); ok {
		return CartIdentity{SessionToken: &token}, nil, nil
	}

	if !mint {
		return CartIdentity{}, nil, utils.NewValidationError(i18n.KeyCartNoIdentity, nil)
	}

	token := r.newToken()
	identity = CartIdentity{SessionToken: &token}
	if !identity.Valid() {
		return CartIdentity{}, nil, utils.NewValidationError(i18n.KeyCartNoIdentity, nil)
	}

	return identity, utils.NewSessionCookie(r.cookies, token), nil
}

// GuestToken returns the session cookie value. Oversized values are ignored.
func (r *IdentityResolver) GuestToken(req *http.Request) (string, bool) {
	if req == nil {
		return "", false
	}
	c, err := req.Cookie(r.cookies.SessionName)
	if err != nil || c.Value == "" || len(c.Value) > MaxSessionTokenLen {
		return "", false
	}
	return c.Value, true
}

// ExpiredSessionCookie removes the guest cookie once its cart has been adopted by a user.
func (r *IdentityResolver) ExpiredSessionCookie() *http.Cookie {
	cookie := utils.NewSessionCookie(r.cookies, "")
	cookie.MaxAge = -1
	return cookie
}
