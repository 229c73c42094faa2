package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cueshop/billiard-backend/internal/config"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT(42, "admin@example.com", "ADMIN", 168)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestJWTRejectsForeignSecretAndExpiry(t *testing.T) {
	SetJWTSecret("one")
	token, err := GenerateJWT(1, "a@b.c", "USER", 1)
	require.NoError(t, err)

	SetJWTSecret("two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)

	expired, err := GenerateJWT(1, "a@b.c", "USER", -1)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)

	_, err = ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 0.3, RoundMoney(0.1+0.2))
	assert.Equal(t, 14970.0, RoundMoney(3*4990))
	assert.Equal(t, int64(499000), ToMinorUnits(4990))
}

func TestGenerateVerificationCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, `^[1-9][0-9]{5}$`, code)
	}
}

func TestNormalizePagination(t *testing.T) {
	assert.Equal(t, PaginationParams{Skip: 0, Take: DefaultTake}, NormalizePagination(PaginationParams{Skip: -3, Take: 0}))
	assert.Equal(t, PaginationParams{Skip: 5, Take: MaxTake}, NormalizePagination(PaginationParams{Skip: 5, Take: 1000}))
}

func TestValidatorCustomTags(t *testing.T) {
	type payload struct {
		Status string `validate:"omitempty,order_status"`
		Kind   string `validate:"required,media_kind"`
	}

	assert.NoError(t, ValidateStruct(&payload{Status: "IN_TRANSIT", Kind: "video"}))

	errs := GetValidationErrors(ValidateStruct(&payload{Status: "LOST", Kind: "audio"}))
	require.Len(t, errs, 2)
	assert.Equal(t, "status", errs[0].Field)
	assert.Equal(t, "order_status", errs[0].Tag)
	assert.Equal(t, "media_kind", errs[1].Tag)
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("lang", "en")
	HandleError(c, NewConflictError("cart.insufficient_stock"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Not enough items in stock"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("lang", "en")
	HandleError(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestSessionCookie(t *testing.T) {
	cookie := NewSessionCookie(config.CookieConfig{SessionName: "cart_session", Secure: true, SessionTTL: 31536000}, "abc")
	assert.Equal(t, "cart_session", cookie.Name)
	assert.Equal(t, 31536000, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
}
