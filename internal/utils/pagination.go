// internal/utils/pagination.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultTake = 20
	MaxTake     = 100
)

type PaginationParams struct {
	Skip int `json:"skip"`
	Take int `json:"take"`
}

func GetPaginationParams(c *gin.Context) PaginationParams {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	take, _ := strconv.Atoi(c.DefaultQuery("take", strconv.Itoa(DefaultTake)))
	return NormalizePagination(PaginationParams{Skip: skip, Take: take})
}

func NormalizePagination(p PaginationParams) PaginationParams {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Take < 1 {
		p.Take = DefaultTake
	}
	if p.Take > MaxTake {
		p.Take = MaxTake
	}
	return p
}

func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	params = NormalizePagination(params)
	return db.Offset(params.Skip).Limit(params.Take)
}

// QueryUint parses an optional positive integer query parameter.
func QueryUint(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// ParamID parses a positive integer path parameter.
func ParamID(c *gin.Context, key string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
