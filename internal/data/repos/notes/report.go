package notes

import (
	"gorm.io/gorm"

	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

type ReportRepo interface {
	Create(dbc dbctx.Context, report *types.FollowupReport) (*types.FollowupReport, error)
	GetByID(dbc dbctx.Context, tenant, id string) (*types.FollowupReport, error)
	SetStorageURI(dbc dbctx.Context, id, uri string) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{
		db:  db,
		log: baseLog.With("repo", "ReportRepo"),
	}
}

func (r *reportRepo) Create(dbc dbctx.Context, report *types.FollowupReport) (*types.FollowupReport, error) {
	if report == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportRepo) GetByID(dbc dbctx.Context, tenant, id string) (*types.FollowupReport, error) {
	if id == "" || tenant == "" {
		return nil, nil
	}
	var report types.FollowupReport
	err := dbc.DB(r.db).
		Where("id = ? AND tenant = ?", id, tenant).
		Limit(1).
		Find(&report).Error
	if err != nil {
		return nil, err
	}
	if report.ID == "" {
		return nil, nil
	}
	return &report, nil
}

func (r *reportRepo) SetStorageURI(dbc dbctx.Context, id, uri string) error {
	if id == "" {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.FollowupReport{}).
		Where("id = ?", id).
		Update("storage_uri", uri).Error
}
