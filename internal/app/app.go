package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/db"
	httpserver "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Clients  *Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func New(ctx context.Context) (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(log, cfg, clients, reposet, metrics)
	if err != nil {
		clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, clients, serviceset)
	router := wireRouter(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP on the configured port together with the background
// workers until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	a.startCollectors(gctx)
	a.startWorkers(gctx, g)

	srv := &httpserver.Server{Engine: a.Router}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	g.Go(func() error { return srv.Run(gctx, addr) })
	return g.Wait()
}

// RunWorker runs only the background workers: the intake consumer and, when
// Temporal is configured, the follow-up workflow worker.
func (a *App) RunWorker(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Services.Intake == nil && a.Clients.Temporal == nil {
		return fmt.Errorf("worker has nothing to run: configure REDIS_ADDR or TEMPORAL_ADDRESS")
	}
	g, gctx := errgroup.WithContext(ctx)
	a.startCollectors(gctx)
	a.Cfg.IntakeEnabled = true
	a.startWorkers(gctx, g)
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

func (a *App) startCollectors(ctx context.Context) {
	if a.Metrics == nil {
		return
	}
	if a.Cfg.MetricsAddr != "" {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	}
	a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
	if a.Cfg.RedisAddr != "" {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr)
	}
}

func (a *App) startWorkers(ctx context.Context, g *errgroup.Group) {
	if a.Cfg.IntakeEnabled && a.Services.Intake != nil {
		consumer := a.Services.Intake
		g.Go(func() error { return consumer.Run(ctx) })
	}
	if a.Clients.Temporal != nil {
		runner, err := temporalworker.NewRunner(a.Log, a.Clients.TemporalCfg, a.Clients.Temporal, a.Services.Notes)
		if err != nil {
			a.Log.Warn("Temporal worker disabled", "error", err)
			return
		}
		g.Go(func() error { return runner.Start(ctx) })
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.Events != nil {
		_ = a.Services.Events.Close()
	}
	a.Clients.Close()
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
