package services

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

func cartTotalFromItems(cart *models.Cart) float64 {
	total := 0.0
	for _, item := range cart.Items {
		total += float64(item.Quantity) * item.Product.Price
	}
	return total
}

func TestGetOrCreateReusesCartForSameSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	first, err := svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("session-a")})
	require.NoError(t, err)
	second, err := svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("session-a")})
	require.NoError(t, err)
	other, err := svc.GetOrCreate(bg, CartIdentity{UserID: uintPtr(7)})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, uint(7), *other.UserID)
	assert.Zero(t, first.TotalAmount)
	assert.Empty(t, first.Items)
}

func TestGetOrCreateRequiresIdentity(t *testing.T) {
	svc := NewCartService(newTestDB(t))

	_, err := svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("")})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, i18n.KeyCartNoIdentity, appErr.Key)
}

func TestCartTotalTracksItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	cue := createProduct(t, db, "Cue", 4990, 10)
	chalk := createProduct(t, db, "Chalk", 150.5, 100)

	cart, err := svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("s")})
	require.NoError(t, err)

	cart, err = svc.AddItem(bg, cart.ID, cue.ID, 2)
	require.NoError(t, err)
	cart, err = svc.AddItem(bg, cart.ID, chalk.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.InDelta(t, 10431.5, cart.TotalAmount, 0.001)
	assert.InDelta(t, cartTotalFromItems(cart), cart.TotalAmount, 0.001)

	// Adding the same product accumulates on the existing line.
	cart, err = svc.AddItem(bg, cart.ID, cue.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.InDelta(t, cartTotalFromItems(cart), cart.TotalAmount, 0.001)

	cart, err = svc.RemoveItem(bg, cart.ID, chalk.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.InDelta(t, 14970.0, cart.TotalAmount, 0.001)

	cart, err = svc.Clear(bg, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalAmount)
}

func TestAddThenUpdateToZeroRestoresTotal(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	p := createProduct(t, db, "Cue", 100, 5)

	cart, err := svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("s")})
	require.NoError(t, err)
	before := cart.TotalAmount

	cart, err = svc.AddItem(bg, cart.ID, p.ID, 2)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, cart.TotalAmount, 0.001)

	cart, err = svc.UpdateQty(bg, cart.ID, p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, before, cart.TotalAmount)
}

func TestAddItemStockBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	p := createProduct(t, db, "Table", 1000, 3)

	cart, err := svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("s")})
	require.NoError(t, err)

	cart, err = svc.AddItem(bg, cart.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	_, err = svc.AddItem(bg, cart.ID, p.ID, 1)
	appErr := requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, i18n.KeyCartInsufficientQty, appErr.Key)

	// A rejected request leaves the cart untouched.
	cart, err = svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("s")})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.InDelta(t, 3000.0, cart.TotalAmount, 0.001)
}

func TestUpdateQtyValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	p := createProduct(t, db, "Cue", 100, 2)
	other := createProduct(t, db, "Other", 10, 2)

	cart, err := svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("s")})
	require.NoError(t, err)
	cart, err = svc.AddItem(bg, cart.ID, p.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateQty(bg, cart.ID, p.ID, 3)
	requireStatus(t, err, http.StatusConflict)

	_, err = svc.UpdateQty(bg, cart.ID, p.ID, -1)
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, i18n.KeyCartQuantityInvalid, appErr.Key)

	_, err = svc.AddItem(bg, cart.ID, p.ID, 0)
	appErr = requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, i18n.KeyCartQuantityInvalid, appErr.Key)

	_, err = svc.UpdateQty(bg, cart.ID, other.ID, 1)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.RemoveItem(bg, cart.ID, other.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.AddItem(bg, cart.ID, 9999, 1)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.AddItem(bg, 9999, p.ID, 1)
	requireStatus(t, err, http.StatusNotFound)

	cart, err = svc.UpdateQty(bg, cart.ID, p.ID, 2)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, cart.TotalAmount, 0.001)
}

func TestPriceChangeRecalculatesCarts(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	products := NewProductService(db, nil, nil)
	p := createProduct(t, db, "Cue", 100, 10)

	a, err := carts.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("a")})
	require.NoError(t, err)
	b, err := carts.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("b")})
	require.NoError(t, err)
	_, err = carts.AddItem(bg, a.ID, p.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(bg, b.ID, p.ID, 1)
	require.NoError(t, err)

	price := 150.0
	_, err = products.UpdateProduct(bg, p.ID, &UpdateProductRequest{Price: &price})
	require.NoError(t, err)

	a, err = carts.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("a")})
	require.NoError(t, err)
	b, err = carts.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("b")})
	require.NoError(t, err)
	assert.InDelta(t, 300.0, a.TotalAmount, 0.001)
	assert.InDelta(t, 150.0, b.TotalAmount, 0.001)
}

func TestConcurrentAddItemNeverExceedsStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	p := createProduct(t, db, "Ball set", 10, 5)

	cart, err := svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("s")})
	require.NoError(t, err)

	const workers = 12
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(bg, cart.ID, p.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, conflicts := 0, 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var appErr *utils.AppError
		require.True(t, errors.As(err, &appErr), "unexpected error: %v", err)
		require.Equal(t, http.StatusConflict, appErr.Status)
		conflicts++
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, workers-5, conflicts)

	cart, err = svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("s")})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.InDelta(t, 50.0, cart.TotalAmount, 0.001)
}

func TestMergeGuestCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	cue := createProduct(t, db, "Cue", 100, 3)
	chalk := createProduct(t, db, "Chalk", 5, 10)
	gone := createProduct(t, db, "Sold out", 50, 1)

	guest, err := svc.GetOrCreate(bg, CartIdentity{SessionToken: strPtr("guest")})
	require.NoError(t, err)
	_, err = svc.AddItem(bg, guest.ID, cue.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(bg, guest.ID, chalk.ID, 4)
	require.NoError(t, err)
	_, err = svc.AddItem(bg, guest.ID, gone.ID, 1)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", gone.ID).Update("count", 0).Error)

	user, err := svc.GetOrCreate(bg, CartIdentity{UserID: uintPtr(7)})
	require.NoError(t, err)
	_, err = svc.AddItem(bg, user.ID, cue.ID, 2)
	require.NoError(t, err)

	merged, err := svc.MergeGuestCart(bg, user.ID, "guest")
	require.NoError(t, err)
	require.Len(t, merged.Items, 2)

	quantities := map[uint]int{}
	for _, item := range merged.Items {
		quantities[item.ProductID] = item.Quantity
	}
	assert.Equal(t, 3, quantities[cue.ID])
	assert.Equal(t, 4, quantities[chalk.ID])
	assert.InDelta(t, 320.0, merged.TotalAmount, 0.001)
	assert.InDelta(t, cartTotalFromItems(merged), merged.TotalAmount, 0.001)

	var guestCarts, guestItems int64
	db.Model(&models.Cart{}).Where("id = ?", guest.ID).Count(&guestCarts)
	db.Model(&models.CartItem{}).Where("cart_id = ?", guest.ID).Count(&guestItems)
	assert.Zero(t, guestCarts)
	assert.Zero(t, guestItems)

	// Nothing left to merge.
	again, err := svc.MergeGuestCart(bg, user.ID, "guest")
	require.NoError(t, err)
	assert.InDelta(t, 320.0, again.TotalAmount, 0.001)
}
