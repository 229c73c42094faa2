package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
)

func createUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	user := &models.User{FullName: "Customer", Email: email, Role: models.RoleUser}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "anna@example.com", "secret1")

	updated, err := svc.UpdateProfile(bg, user.ID, &UpdateProfileRequest{FullName: strPtr("  Anna Petrova ")})
	require.NoError(t, err)
	assert.Equal(t, "Anna Petrova", updated.FullName)

	_, err = svc.UpdateProfile(bg, user.ID, &UpdateProfileRequest{FullName: strPtr("   ")})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateProfile(bg, user.ID, &UpdateProfileRequest{CurrentPassword: "wrong", NewPassword: strPtr("secret2")})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, i18n.KeyAuthInvalidCredentials, appErr.Key)

	_, err = svc.UpdateProfile(bg, user.ID, &UpdateProfileRequest{CurrentPassword: "secret1", NewPassword: strPtr("secret2")})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NoError(t, stored.CheckPassword("secret2"))
	assert.Equal(t, "Anna Petrova", stored.FullName)

	_, err = svc.UpdateProfile(bg, 9999, &UpdateProfileRequest{})
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestDeleteAccountKeepsOrders(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "ivan@example.com", "secret1")
	product := createProduct(t, db, "Cue", 100, 10)

	carts := NewCartService(db)
	cart, err := carts.GetOrCreate(bg, CartIdentity{UserID: uintPtr(user.ID)})
	require.NoError(t, err)
	_, err = carts.AddItem(bg, cart.ID, product.ID, 2)
	require.NoError(t, err)

	order := &models.Order{
		UserID:      uintPtr(user.ID),
		OrderNumber: "ORD-20240309-AAAAAA",
		TotalAmount: 100,
		Status:      models.OrderStatusPending,
		FullName:    "Ivan",
		Email:       "ivan@example.com",
		Phone:       "+79990000000",
		Address:     "Moscow",
	}
	require.NoError(t, db.Create(order).Error)

	err = svc.DeleteAccount(bg, user.ID, "wrong")
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, svc.DeleteAccount(bg, user.ID, "secret1"))

	var users, cartCount, itemCount int64
	db.Model(&models.User{}).Where("id = ?", user.ID).Count(&users)
	db.Model(&models.Cart{}).Count(&cartCount)
	db.Model(&models.CartItem{}).Count(&itemCount)
	assert.Zero(t, users)
	assert.Zero(t, cartCount)
	assert.Zero(t, itemCount)

	var kept models.Order
	require.NoError(t, db.First(&kept, order.ID).Error)
	assert.Nil(t, kept.UserID)

	err = svc.DeleteAccount(bg, user.ID, "secret1")
	requireStatus(t, err, http.StatusUnauthorized)
}
