package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	domainnotes "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain/notes"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/gcp"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime/bus"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/services"
)

const (
	ResourceTypeReport = "followup_report"
	maxPeriod          = 366 * 24 * time.Hour
)

type Service interface {
	Build(dbc dbctx.Context, tenant domain.TenantRef, from, to time.Time) (*domain.FollowupReport, error)
	Get(dbc dbctx.Context, tenant domain.TenantRef, id string) (*domain.FollowupReport, error)
}

type service struct {
	log     *logger.Logger
	notes   repos.AINoteRepo
	reports repos.ReportRepo
	store   gcp.ObjectStore
	audit   *services.AuditRecorder
	events  bus.Bus
}

// NewService builds reports from stored notes. store may be nil, in which
// case reports live only in the database.
func NewService(
	baseLog *logger.Logger,
	notes repos.AINoteRepo,
	reports repos.ReportRepo,
	store gcp.ObjectStore,
	audit *services.AuditRecorder,
	events bus.Bus,
) Service {
	return &service{
		log:     baseLog.With("service", "ReportService"),
		notes:   notes,
		reports: reports,
		store:   store,
		audit:   audit,
		events:  events,
	}
}

func (s *service) Build(dbc dbctx.Context, tenant domain.TenantRef, from, to time.Time) (*domain.FollowupReport, error) {
	if tenant.IsZero() {
		return nil, domain.NewValidationError("tenant", "tenant is required")
	}
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		return nil, domain.NewValidationError("date_range", "date_range_start must be before date_range_end")
	}
	if to.Sub(from) > maxPeriod {
		return nil, domain.NewValidationError("date_range", "date range may not exceed one year")
	}
	start := time.Now()

	rows, err := s.notes.ListInRange(dbc, tenant.Identifier, from, to)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	summary := Summarize(rows, from, to)
	md, err := RenderMarkdown(tenant.Identifier, summary)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("encode report summary: %w", err)
	}

	report := &domain.FollowupReport{
		ID:          ulid.Make().String(),
		Tenant:      tenant.Identifier,
		PeriodStart: summary.PeriodStart,
		PeriodEnd:   summary.PeriodEnd,
		NoteCount:   len(rows),
		Summary:     datatypes.JSON(body),
		Markdown:    md,
	}
	if _, err := s.reports.Create(dbc, report); err != nil {
		s.audit.Record(dbc, services.AuditEntry{
			Tenant:       tenant.Identifier,
			Action:       domainnotes.AuditActionBuildReport,
			ResourceType: ResourceTypeReport,
			ResourceID:   report.ID,
			Started:      start,
			Err:          err,
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistFailed, err)
	}

	if s.store != nil {
		if uri, err := s.upload(dbc.Ctx, report, body); err != nil {
			s.log.Warn("Report upload failed", "tenant", tenant.Identifier, "report_id", report.ID, "error", err)
		} else if err := s.reports.SetStorageURI(dbc, report.ID, uri); err != nil {
			s.log.Warn("Failed to record report location", "report_id", report.ID, "error", err)
		} else {
			report.StorageURI = uri
		}
	}

	s.audit.Record(dbc, services.AuditEntry{
		Tenant:       tenant.Identifier,
		Action:       domainnotes.AuditActionBuildReport,
		ResourceType: ResourceTypeReport,
		ResourceID:   report.ID,
		Details: map[string]any{
			"note_count":     report.NoteCount,
			"total_visitors": summary.Visitors.TotalVisitors,
			"storage_uri":    report.StorageURI,
		},
		Started: start,
	})
	if s.events != nil {
		ctx := dbc.Ctx
		if ctx == nil {
			ctx = context.Background()
		}
		ev := realtime.NewEvent(realtime.EventReportBuilt, tenant.Identifier, map[string]any{
			"report_id":      report.ID,
			"total_visitors": summary.Visitors.TotalVisitors,
		})
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn("Report event publish failed", "report_id", report.ID, "error", err)
		}
	}
	s.log.Info("Report built", "tenant", tenant.Identifier, "report_id", report.ID, "notes", report.NoteCount, "visitors", summary.Visitors.TotalVisitors)
	return report, nil
}

// upload writes the JSON and markdown artifacts and returns the JSON location.
func (s *service) upload(ctx context.Context, report *domain.FollowupReport, body []byte) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	base := fmt.Sprintf("%s/%s", report.Tenant, report.ID)
	uri, err := s.store.Put(ctx, base+".json", "", body)
	if err != nil {
		return "", err
	}
	if _, err := s.store.Put(ctx, base+".md", "", []byte(report.Markdown)); err != nil {
		return "", err
	}
	return uri, nil
}

func (s *service) Get(dbc dbctx.Context, tenant domain.TenantRef, id string) (*domain.FollowupReport, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return nil, domain.NewValidationError("id", "report id must be a ULID")
	}
	report, err := s.reports.GetByID(dbc, tenant.Identifier, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
	}
	return report, nil
}
