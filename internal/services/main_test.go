package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/database"
	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func createProduct(t *testing.T, db *gorm.DB, title string, price float64, count int) *models.Product {
	t.Helper()

	var cue models.Type
	require.NoError(t, db.Where(models.Type{Value: "cues"}).Attrs(models.Type{Name: "Кии"}).FirstOrCreate(&cue).Error)

	product := &models.Product{
		Title:       title,
		Description: title + " description",
		Price:       price,
		Count:       count,
		Visible:     true,
		TypeID:      cue.ID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// requireStatus asserts that err is an *utils.AppError with the given HTTP status.
func requireStatus(t *testing.T, err error, status int) *utils.AppError {
	t.Helper()

	var appErr *utils.AppError
	require.Error(t, err)
	require.True(t, errors.As(err, &appErr), "expected *utils.AppError, got %T: %v", err, err)
	require.Equal(t, status, appErr.Status)
	return appErr
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func uintPtr(u uint) *uint    { return &u }

var bg = context.Background()
