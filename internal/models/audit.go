// internal/models/audit.go
package models

type AuditLog struct {
	BaseModel
	UserID       *uint  `json:"userId" gorm:"index"`
	Action       string `json:"action" gorm:"size:100;not null;index"`
	ResourceType string `json:"resourceType" gorm:"size:50;not null;index"`
	ResourceID   *uint  `json:"resourceId" gorm:"index"`
	NewValues    JSONB  `json:"newValues" gorm:"type:jsonb"`
	Status       int    `json:"status"`
	IPAddress    string `json:"ipAddress" gorm:"size:45"`
	UserAgent    string `json:"userAgent" gorm:"type:text"`
}
