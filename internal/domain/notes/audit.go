package notes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditActionGenerateNote   = "generate_note"
	AuditActionSubmitFeedback = "submit_feedback"
	AuditActionBuildReport    = "build_report"
)

type AIAuditLog struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Tenant       string         `gorm:"column:tenant;not null;index" json:"tenant"`
	UserID       string         `gorm:"column:user_id;index" json:"user_id,omitempty"`
	UserEmail    string         `gorm:"column:user_email" json:"user_email,omitempty"`
	Action       string         `gorm:"column:action;not null;index" json:"action"`
	ResourceType string         `gorm:"column:resource_type;index" json:"resource_type,omitempty"`
	ResourceID   string         `gorm:"column:resource_id;index" json:"resource_id,omitempty"`
	Endpoint     string         `gorm:"column:endpoint" json:"endpoint,omitempty"`
	HTTPMethod   string         `gorm:"column:http_method" json:"http_method,omitempty"`
	IPAddress    string         `gorm:"column:ip_address" json:"ip_address,omitempty"`
	UserAgent    string         `gorm:"column:user_agent" json:"user_agent,omitempty"`
	Details      datatypes.JSON `gorm:"column:details;type:jsonb" json:"details,omitempty"`
	Success      bool           `gorm:"column:success;not null" json:"success"`
	ErrorMessage string         `gorm:"column:error_message" json:"error_message,omitempty"`
	DurationMS   int64          `gorm:"column:duration_ms" json:"duration_ms"`
	Timestamp    time.Time      `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (AIAuditLog) TableName() string { return "ai_audit_log" }

func (a *AIAuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}
