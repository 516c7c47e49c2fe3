package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/sources"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/gcp"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/llm"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/redisx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/temporalx"
)

// Clients holds external connections. Everything except the member database
// and the LLM is optional and nil when unconfigured.
type Clients struct {
	MemberPool   *pgxpool.Pool
	CalendarPool *pgxpool.Pool
	Mongo        *mongo.Client
	Redis        *goredis.Client
	LLM          *llm.Client
	Temporal     temporalsdkclient.Client
	TemporalCfg  temporalx.Config
	ReportStore  gcp.ObjectStore
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (*Clients, error) {
	log.Info("Wiring clients...")
	c := &Clients{}

	// Postgres sources
	pool, err := sources.NewPool(ctx, log, "member", cfg.MemberDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("init member database: %w", err)
	}
	c.MemberPool = pool
	if cfg.CalendarDatabaseURL != "" {
		if c.CalendarPool, err = sources.NewPool(ctx, log, "calendar", cfg.CalendarDatabaseURL); err != nil {
			c.Close()
			return nil, fmt.Errorf("init calendar database: %w", err)
		}
	} else {
		log.Warn("CALENDAR_DATABASE_URL not set; notes will have no upcoming events")
	}

	// Mongo
	if cfg.ConnectMongoURI != "" {
		if c.Mongo, err = sources.NewMongoClient(ctx, cfg.ConnectMongoURI); err != nil {
			c.Close()
			return nil, fmt.Errorf("init connect mongo: %w", err)
		}
	} else {
		log.Warn("CONNECT_MONGO_URI not set; notes will have no teams or groups")
	}

	// Redis
	if cfg.RedisAddr != "" {
		if c.Redis, err = redisx.NewClient(ctx, log, redisx.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}); err != nil {
			c.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
	}

	// LLM
	if c.LLM, err = llm.New(log, llm.ConfigFromEnv()); err != nil {
		c.Close()
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	// Temporal
	c.TemporalCfg = temporalx.LoadConfig()
	if c.Temporal, err = temporalx.NewClient(log, c.TemporalCfg); err != nil {
		c.Close()
		return nil, fmt.Errorf("init temporal client: %w", err)
	}

	// Report storage
	storeCfg, err := gcp.StoreConfigFromEnv()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("resolve report storage config: %w", err)
	}
	if storeCfg.Enabled() {
		if c.ReportStore, err = gcp.NewObjectStore(ctx, log, storeCfg); err != nil {
			c.Close()
			return nil, fmt.Errorf("init report storage: %w", err)
		}
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.ReportStore != nil {
		_ = c.ReportStore.Close()
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Mongo != nil {
		_ = c.Mongo.Disconnect(context.Background())
	}
	if c.CalendarPool != nil {
		c.CalendarPool.Close()
	}
	if c.MemberPool != nil {
		c.MemberPool.Close()
	}
}
