// internal/services/admin_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type AdminService struct {
	db  *gorm.DB
	now func() time.Time
}

type AdminDashboardStats struct {
	TotalUsers        int64                        `json:"totalUsers"`
	VerifiedUsers     int64                        `json:"verifiedUsers"`
	NewUsersThisMonth int64                        `json:"newUsersThisMonth"`
	TotalProducts     int64                        `json:"totalProducts"`
	VisibleProducts   int64                        `json:"visibleProducts"`
	OutOfStock        int64                        `json:"outOfStock"`
	TotalOrders       int64                        `json:"totalOrders"`
	OrdersByStatus    map[models.OrderStatus]int64 `json:"ordersByStatus"`
	TotalRevenue      float64                      `json:"totalRevenue"`
	MonthlyRevenue    float64                      `json:"monthlyRevenue"`
	RevenueGrowth     float64                      `json:"revenueGrowth"`
	ActiveCarts       int64                        `json:"activeCarts"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role   *models.UserRole
	Search string
}

type AuditLogFilter struct {
	utils.PaginationParams
	UserID       *uint
	ResourceType string
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{
		db:  db,
		now: time.Now,
	}
}

// GetDashboardStats summarises the shop. Revenue counts SUCCEEDED orders only.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &AdminDashboardStats{OrdersByStatus: map[models.OrderStatus]int64{}}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	counts := []struct {
		dest  *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&stats.TotalUsers, &models.User{}, "", nil},
		{&stats.VerifiedUsers, &models.User{}, "verified IS NOT NULL", nil},
		{&stats.NewUsersThisMonth, &models.User{}, "created_at >= ?", []interface{}{monthStart}},
		{&stats.TotalProducts, &models.Product{}, "", nil},
		{&stats.VisibleProducts, &models.Product{}, "visible = ?", []interface{}{true}},
		{&stats.OutOfStock, &models.Product{}, "count <= 0", nil},
		{&stats.TotalOrders, &models.Order{}, "", nil},
		{&stats.ActiveCarts, &models.Cart{}, "total_amount > 0", nil},
	}
	for _, q := range counts {
		query := db.Model(q.model)
		if q.where != "" {
			query = query.Where(q.where, q.args...)
		}
		if err := query.Count(q.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	var byStatus []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, row := range byStatus {
		stats.OrdersByStatus[row.Status] = row.Count
	}

	revenue := func(dest *float64, where string, args ...interface{}) error {
		query := db.Model(&models.Order{}).Where("status = ?", models.OrderStatusSucceeded)
		if where != "" {
			query = query.Where(where, args...)
		}
		return query.Select("COALESCE(SUM(total_amount), 0)").Scan(dest).Error
	}

	var lastMonthRevenue float64
	if err := revenue(&stats.TotalRevenue, ""); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if err := revenue(&stats.MonthlyRevenue, "created_at >= ?", monthStart); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if err := revenue(&lastMonthRevenue, "created_at >= ? AND created_at < ?", lastMonthStart, monthStart); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	stats.TotalRevenue = utils.RoundMoney(stats.TotalRevenue)
	stats.MonthlyRevenue = utils.RoundMoney(stats.MonthlyRevenue)
	if lastMonthRevenue > 0 {
		stats.RevenueGrowth = utils.RoundMoney((stats.MonthlyRevenue - lastMonthRevenue) / lastMonthRevenue * 100)
	}

	return stats, nil
}

// User Management
func (s *AdminService) GetUsers(ctx context.Context, filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := utils.ApplyPagination(query, filter.PaginationParams).Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// GetAuditLogs lists recorded admin mutations, newest first.
func (s *AdminService) GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	if err := utils.ApplyPagination(query, filter.PaginationParams).Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return logs, total, nil
}
