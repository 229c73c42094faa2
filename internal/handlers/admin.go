// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/models"
	"github.com/cueshop/billiard-backend/internal/services"
	"github.com/cueshop/billiard-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	filter := services.AdminUserFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Search:           c.Query("search"),
	}

	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		if r != models.RoleUser && r != models.RoleAdmin {
			utils.ValidationErrorResponse(c, []utils.ValidationError{{
				Field:   "role",
				Tag:     "oneof",
				Message: "role must be one of USER, ADMIN",
			}})
			return
		}
		filter.Role = &r
	}

	users, total, err := h.adminService.GetUsers(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"users": users, "total": total})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}

	logs, total, err := h.adminService.GetAuditLogs(c.Request.Context(), services.AuditLogFilter{
		PaginationParams: utils.GetPaginationParams(c),
		UserID:           userID,
		ResourceType:     c.Query("resourceType"),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"logs": logs, "total": total})
}
