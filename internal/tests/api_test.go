// internal/tests/api_test.go
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/config"
	"github.com/cueshop/billiard-backend/internal/database"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/router"
)

type capturingMailer struct {
	codes map[string]string
}

func (m *capturingMailer) SendVerificationCode(_ context.Context, to, _ string, code string) error {
	m.codes[to] = code
	return nil
}

type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	mailer *capturingMailer
	cfg    *config.Config
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Database: config.DatabaseConfig{
			Driver:     "sqlite",
			AdminEmail: "admin@example.com",
			AdminPass:  "admin123",
		},
		JWT: config.JWTConfig{SecretKey: "api-test-secret", TokenTTL: 1},
		Cookie: config.CookieConfig{
			AuthName:    "token",
			SessionName: "cart_session",
			SessionTTL:  3600,
		},
		Payment: config.PaymentConfig{Currency: "rub"},
		CORS:    config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
	}
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)

	db, err := database.OpenInMemory()
	suite.Require().NoError(err)
	suite.db = db

	suite.cfg = testConfig()
	suite.Require().NoError(database.SeedInitialData(db, suite.cfg.Database))

	suite.mailer = &capturingMailer{codes: map[string]string{}}
	suite.router, err = router.Setup(db, suite.cfg, router.Dependencies{Mailer: suite.mailer})
	suite.Require().NoError(err)
}

func (suite *APITestSuite) TearDownTest() {
	database.Close(suite.db)
}

func (suite *APITestSuite) request(method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (suite *APITestSuite) login(email, password string) *http.Cookie {
	w := suite.request(http.MethodPost, "/auth/login", gin.H{"email": email, "password": password})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	token := cookieNamed(w, "token")
	suite.Require().NotNil(token)
	suite.True(token.HttpOnly)
	return token
}

// registerUser signs up and verifies a customer and returns their auth cookie.
func (suite *APITestSuite) registerUser(email string) *http.Cookie {
	w := suite.request(http.MethodPost, "/auth/register", gin.H{"fullName": "Test User", "email": email, "password": "secret1"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.request(http.MethodPost, "/auth/verify", gin.H{"email": email, "code": suite.mailer.codes[email]})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	return suite.login(email, "secret1")
}

func (suite *APITestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("healthy", suite.decode(w)["status"])
}

func (suite *APITestSuite) TestAuthFlow() {
	w := suite.request(http.MethodPost, "/auth/register", gin.H{"fullName": "Anna", "email": "anna@example.com", "password": "secret1"})
	suite.Equal(http.StatusCreated, w.Code)
	body := suite.decode(w)
	suite.NotEmpty(body["message"])
	user := body["user"].(map[string]interface{})
	suite.Equal("anna@example.com", user["email"])
	suite.NotContains(user, "password")

	w = suite.request(http.MethodPost, "/auth/register", gin.H{"fullName": "Anna", "email": "anna@example.com", "password": "secret1"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/auth/register", gin.H{"fullName": "Bob", "email": "not-an-email", "password": "1"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.decode(w), "details")

	w = suite.request(http.MethodPost, "/auth/login", gin.H{"email": "anna@example.com", "password": "secret1"})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/auth/verify", gin.H{"email": "anna@example.com", "code": suite.mailer.codes["anna@example.com"]})
	suite.Equal(http.StatusOK, w.Code)

	token := suite.login("anna@example.com", "secret1")

	w = suite.request(http.MethodGet, "/auth/me", nil, token)
	suite.Equal(http.StatusOK, w.Code)
	me := suite.decode(w)["user"].(map[string]interface{})
	suite.Equal("anna@example.com", me["email"])
	suite.Equal("USER", me["role"])

	w = suite.request(http.MethodGet, "/auth/me", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, "/auth/logout", nil, token)
	suite.Equal(http.StatusOK, w.Code)
	cleared := cookieNamed(w, "token")
	suite.Require().NotNil(cleared)
	suite.Empty(cleared.Value)
	suite.True(cleared.MaxAge < 0)
}

func (suite *APITestSuite) TestProfileAndAccountDeletion() {
	w := suite.request(http.MethodPatch, "/users/profile", gin.H{"fullName": "Nobody"})
	suite.Equal(http.StatusUnauthorized, w.Code)

	token := suite.registerUser("olga@example.com")

	w = suite.request(http.MethodPatch, "/users/profile", gin.H{"fullName": "Olga"}, token)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.Equal("Profile updated", body["message"])
	suite.Equal("Olga", body["user"].(map[string]interface{})["fullName"])

	w = suite.request(http.MethodDelete, "/users/account", gin.H{"password": "wrong1"}, token)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodDelete, "/users/account", gin.H{"password": "secret1"}, token)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	cleared := cookieNamed(w, "token")
	suite.Require().NotNil(cleared)
	suite.True(cleared.MaxAge < 0)

	w = suite.request(http.MethodGet, "/auth/me", nil, token)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestProductUpdateRequiresAdmin() {
	w := suite.request(http.MethodPatch, "/products/1", gin.H{"price": 5500})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.JSONEq(`{"error":"Not authorized"}`, w.Body.String())

	user := suite.registerUser("buyer@example.com")
	w = suite.request(http.MethodPatch, "/products/1", gin.H{"price": 5500}, user)
	suite.Equal(http.StatusForbidden, w.Code)

	admin := suite.login("admin@example.com", "admin123")
	w = suite.request(http.MethodPatch, "/products/1", gin.H{"price": 5500}, admin)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(5500.0, suite.decode(w)["price"])

	var logs []models.AuditLog
	suite.Require().NoError(suite.db.Find(&logs).Error)
	suite.Require().Len(logs, 1)
	suite.Equal("PATCH /products/:id", logs[0].Action)
	suite.Equal("products", logs[0].ResourceType)
	suite.Equal(http.StatusOK, logs[0].Status)

	w = suite.request(http.MethodGet, "/admin/audit-logs?resourceType=products", nil, admin)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(1.0, suite.decode(w)["total"])

	w = suite.request(http.MethodGet, "/admin/dashboard/stats", nil, user)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *APITestSuite) TestCatalogReads() {
	w := suite.request(http.MethodGet, "/products?search=9FT", nil)
	suite.Equal(http.StatusOK, w.Code)
	products := suite.decode(w)["products"].([]interface{})
	suite.Len(products, 1)

	w = suite.request(http.MethodGet, "/products/999", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/products/abc", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/types", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestGuestCart() {
	// Product 2 is the seeded table with five in stock.
	w := suite.request(http.MethodPost, "/cart/add", gin.H{"productId": 2, "quantity": 5})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	session := cookieNamed(w, "cart_session")
	suite.Require().NotNil(session)
	suite.True(session.HttpOnly)

	cart := suite.decode(w)
	suite.Equal(999950.0, cart["totalAmount"])
	suite.Len(cart["items"], 1)

	w = suite.request(http.MethodPost, "/cart/add", gin.H{"productId": 2}, session)
	suite.Equal(http.StatusConflict, w.Code)
	suite.JSONEq(`{"error":"Not enough items in stock"}`, w.Body.String())

	w = suite.request(http.MethodGet, "/cart", nil, session)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(999950.0, suite.decode(w)["totalAmount"])

	w = suite.request(http.MethodPost, "/cart/update", gin.H{"productId": 2, "quantity": 0}, session)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(0.0, suite.decode(w)["totalAmount"])

	w = suite.request(http.MethodGet, "/cart", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestCartRejectsOversizedSessionToken() {
	w := suite.request(http.MethodPost, "/cart/add", gin.H{"productId": 1, "sessionToken": strings.Repeat("x", 65)})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.decode(w), "details")

	var carts int64
	suite.Require().NoError(suite.db.Model(&models.Cart{}).Count(&carts).Error)
	suite.Zero(carts)
}

func (suite *APITestSuite) TestGuestCartAdoptedAfterLogin() {
	w := suite.request(http.MethodPost, "/cart/add", gin.H{"productId": 1, "quantity": 2})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	session := cookieNamed(w, "cart_session")
	suite.Require().NotNil(session)

	token := suite.registerUser("guest@example.com")

	w = suite.request(http.MethodPost, "/cart/add", gin.H{"productId": 2, "quantity": 1}, token, session)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	cart := suite.decode(w)
	suite.Len(cart["items"], 2)
	suite.Equal(209970.0, cart["totalAmount"])
	suite.NotNil(cart["userId"])

	cleared := cookieNamed(w, "cart_session")
	suite.Require().NotNil(cleared)
	suite.True(cleared.MaxAge < 0)

	w = suite.request(http.MethodGet, "/cart", nil, session)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(0.0, suite.decode(w)["totalAmount"])
}

func (suite *APITestSuite) TestOrders() {
	contact := gin.H{
		"fullName": "Ivan Petrov",
		"email":    "ivan@example.com",
		"phone":    "+79990000000",
		"address":  "Moscow",
	}

	empty := gin.H{"items": []gin.H{}}
	for k, v := range contact {
		empty[k] = v
	}
	w := suite.request(http.MethodPost, "/orders", empty)
	suite.Equal(http.StatusBadRequest, w.Code)

	user := suite.registerUser("ivan@example.com")
	order := gin.H{"items": []gin.H{{"productId": 1, "quantity": 2}}}
	for k, v := range contact {
		order[k] = v
	}
	w = suite.request(http.MethodPost, "/orders", order, user)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := suite.decode(w)
	suite.Regexp(`^ORD-\d{8}-[0-9A-Z]{6}$`, created["orderNumber"])
	suite.Equal(9980.0, created["totalAmount"])
	suite.Equal("PENDING", created["status"])
	suite.NotNil(created["userId"])

	w = suite.request(http.MethodGet, "/orders", nil, user)
	suite.Equal(http.StatusOK, w.Code)
	suite.Len(suite.decode(w)["orders"], 1)

	w = suite.request(http.MethodPatch, "/orders/1", gin.H{"status": "SHIPPED"}, suite.login("admin@example.com", "admin123"))
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/orders/1/payment", nil)
	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
