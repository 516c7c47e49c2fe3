package services

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos"
	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/ctxutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

// AuditRecorder writes ai_audit_log rows. Failures are logged and swallowed;
// an audit outage never fails the action being audited.
type AuditRecorder struct {
	repo repos.AuditLogRepo
	log  *logger.Logger
}

func NewAuditRecorder(repo repos.AuditLogRepo, baseLog *logger.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, log: baseLog.With("service", "AuditRecorder")}
}

type AuditEntry struct {
	Tenant       string
	Action       string
	ResourceType string
	ResourceID   string
	Details      map[string]any
	Started      time.Time
	Err          error
}

func (a *AuditRecorder) Record(dbc dbctx.Context, e AuditEntry) {
	if a == nil || a.repo == nil {
		return
	}
	row := &types.AIAuditLog{
		Tenant:       e.Tenant,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Success:      e.Err == nil,
	}
	if !e.Started.IsZero() {
		row.DurationMS = time.Since(e.Started).Milliseconds()
	}
	if e.Err != nil {
		row.ErrorMessage = e.Err.Error()
	}
	if len(e.Details) > 0 {
		if b, err := json.Marshal(e.Details); err == nil {
			row.Details = datatypes.JSON(b)
		}
	}
	if dbc.Ctx != nil {
		if rd := ctxutil.GetRequestData(dbc.Ctx); rd != nil {
			row.UserID = rd.UserID
			row.UserEmail = rd.UserEmail
			row.Endpoint = rd.Endpoint
			row.HTTPMethod = rd.Method
			row.IPAddress = rd.IPAddress
			row.UserAgent = rd.UserAgent
		}
	}
	if err := a.repo.Create(dbc, row); err != nil {
		a.log.Warn("Audit write failed", "action", e.Action, "resource_id", e.ResourceID, "error", err)
	}
}
