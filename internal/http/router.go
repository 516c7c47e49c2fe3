package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/handlers"
	httpMW "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/middleware"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	FollowupHandler *httpH.FollowupHandler
	NoteHandler     *httpH.NoteHandler
	FeedbackHandler *httpH.FeedbackHandler
	ReportHandler   *httpH.ReportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireServiceToken())
	}
	api.Use(httpMW.RequireTenant())
	{
		// Follow-up generation
		if cfg.FollowupHandler != nil {
			api.POST("/followup/notes", cfg.FollowupHandler.Generate)
			api.POST("/followup/preview", cfg.FollowupHandler.Preview)
			api.POST("/followup/enqueue", cfg.FollowupHandler.Enqueue)
			api.POST("/followup/workflows", cfg.FollowupHandler.StartWorkflow)
		}

		// Stored notes
		if cfg.NoteHandler != nil {
			api.GET("/notes", cfg.NoteHandler.ListNotes)
			api.GET("/notes/:id", cfg.NoteHandler.GetNote)
		}

		// Feedback
		if cfg.FeedbackHandler != nil {
			api.POST("/feedback", cfg.FeedbackHandler.Submit)
			api.GET("/feedback/notes/:id", cfg.FeedbackHandler.ForNote)
			api.GET("/feedback/stats", cfg.FeedbackHandler.Stats)
		}

		// Reports
		if cfg.ReportHandler != nil {
			api.POST("/reports", cfg.ReportHandler.Build)
			api.GET("/reports/:id", cfg.ReportHandler.Get)
		}
	}

	return r
}
