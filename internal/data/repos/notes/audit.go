package notes

import (
	"gorm.io/gorm"

	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

type AuditLogRepo interface {
	Create(dbc dbctx.Context, entry *types.AIAuditLog) error
	ListByResource(dbc dbctx.Context, resourceType, resourceID string, limit int) ([]*types.AIAuditLog, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{
		db:  db,
		log: baseLog.With("repo", "AuditLogRepo"),
	}
}

func (r *auditLogRepo) Create(dbc dbctx.Context, entry *types.AIAuditLog) error {
	if entry == nil {
		return nil
	}
	return dbc.DB(r.db).Create(entry).Error
}

func (r *auditLogRepo) ListByResource(dbc dbctx.Context, resourceType, resourceID string, limit int) ([]*types.AIAuditLog, error) {
	out := []*types.AIAuditLog{}
	if resourceType == "" || resourceID == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	err := dbc.DB(r.db).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
