package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cueshop/billiard-backend/internal/config"
	"github.com/cueshop/billiard-backend/internal/i18n"
)

func testResolver() *IdentityResolver {
	r := NewIdentityResolver(config.CookieConfig{SessionName: "cart_session", Secure: true, SessionTTL: 3600})
	r.newToken = func() string { return "minted-token" }
	return r
}

func TestResolvePrefersBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "from-cookie"})

	identity, cookie, err := testResolver().Resolve(IdentityInput{SessionToken: strPtr(" body ")}, req, 5, true)
	require.NoError(t, err)
	assert.Nil(t, cookie)
	assert.Nil(t, identity.UserID)
	assert.Equal(t, "body", *identity.SessionToken)
}

func TestResolveAuthenticatedUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "from-cookie"})

	identity, cookie, err := testResolver().Resolve(IdentityInput{}, req, 5, true)
	require.NoError(t, err)
	assert.Nil(t, cookie)
	require.NotNil(t, identity.UserID)
	assert.Equal(t, uint(5), *identity.UserID)
	assert.False(t, identity.HasSession())
}

func TestResolveCookieOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "from-cookie"})

	identity, cookie, err := testResolver().Resolve(IdentityInput{}, req, 0, false)
	require.NoError(t, err)
	assert.Nil(t, cookie)
	assert.Equal(t, "from-cookie", *identity.SessionToken)
}

func TestResolveMintsSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart/add", nil)

	identity, cookie, err := testResolver().Resolve(IdentityInput{}, req, 0, true)
	require.NoError(t, err)
	require.NotNil(t, cookie)
	assert.Equal(t, "minted-token", *identity.SessionToken)
	assert.Equal(t, "cart_session", cookie.Name)
	assert.Equal(t, "minted-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestResolveWithoutMintFails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)

	_, _, err := testResolver().Resolve(IdentityInput{UserID: uintPtr(0), SessionToken: strPtr("  ")}, req, 0, false)
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, i18n.KeyCartNoIdentity, appErr.Key)
}

func TestResolveRejectsOversizedSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart/add", nil)

	_, _, err := testResolver().Resolve(IdentityInput{SessionToken: strPtr(strings.Repeat("a", MaxSessionTokenLen+1))}, req, 0, true)
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, i18n.KeyValidationInvalid, appErr.Key)

	identity, _, err := testResolver().Resolve(IdentityInput{SessionToken: strPtr(strings.Repeat("a", MaxSessionTokenLen))}, req, 0, true)
	require.NoError(t, err)
	assert.Len(t, *identity.SessionToken, MaxSessionTokenLen)
}

func TestResolveIgnoresOversizedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart/add", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: strings.Repeat("c", MaxSessionTokenLen+1)})

	identity, cookie, err := testResolver().Resolve(IdentityInput{}, req, 0, true)
	require.NoError(t, err)
	require.NotNil(t, cookie)
	assert.Equal(t, "minted-token", *identity.SessionToken)
}

func TestGuestTokenAndExpiredCookie(t *testing.T) {
	r := testResolver()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	_, ok := r.GuestToken(req)
	assert.False(t, ok)

	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "guest"})
	token, ok := r.GuestToken(req)
	assert.True(t, ok)
	assert.Equal(t, "guest", token)

	expired := r.ExpiredSessionCookie()
	assert.Equal(t, "cart_session", expired.Name)
	assert.Empty(t, expired.Value)
	assert.Negative(t, expired.MaxAge)
	assert.True(t, expired.HttpOnly)
}
