package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http"
	httpH "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/handlers"
	httpMW "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/middleware"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Followup *httpH.FollowupHandler
	Note     *httpH.NoteHandler
	Feedback *httpH.FeedbackHandler
	Report   *httpH.ReportHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, clients *Clients, svc Services) Handlers {
	log.Info("Wiring handlers...")

	checks := map[string]httpH.Pinger{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"member_db": func(ctx context.Context) error { return clients.MemberPool.Ping(ctx) },
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() }
	}

	// Typed nils would make the optional routes look configured.
	var queue httpH.Enqueuer
	if svc.Producer != nil {
		queue = svc.Producer
	}
	var workflows httpH.WorkflowStarter
	if svc.Workflows != nil {
		workflows = svc.Workflows
	}

	return Handlers{
		Health:   httpH.NewHealthHandler(checks),
		Followup: httpH.NewFollowupHandler(svc.Notes, queue, workflows),
		Note:     httpH.NewNoteHandler(svc.Notes),
		Feedback: httpH.NewFeedbackHandler(svc.Feedback),
		Report:   httpH.NewReportHandler(svc.Reports),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, cfg.ServiceJWTSecret, cfg.ServiceJWTIssuer),
		HealthHandler:   handlers.Health,
		FollowupHandler: handlers.Followup,
		NoteHandler:     handlers.Note,
		FeedbackHandler: handlers.Feedback,
		ReportHandler:   handlers.Report,
	})
}
