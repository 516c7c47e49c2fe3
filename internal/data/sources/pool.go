package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/envutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

// NewPool opens a pgx pool against a tenant-partitioned database. The pool is
// shared by every tenant; the schema is chosen per transaction.
func NewPool(ctx context.Context, log *logger.Logger, name, dsn string) (*pgxpool.Pool, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%s database url is empty", name)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse %s database url: %w", name, err)
	}
	if n := envutil.Int("SOURCE_DB_MAX_CONNS", 10); n > 0 {
		cfg.MaxConns = int32(n)
	}
	cfg.MaxConnIdleTime = envutil.Seconds("SOURCE_DB_MAX_IDLE_SECONDS", 300)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", name, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s database: %w", name, err)
	}
	if log != nil {
		log.Info("Source database connected", "source", name, "max_conns", cfg.MaxConns)
	}
	return pool, nil
}

func searchPathSQL(tenant domain.TenantRef) string {
	return "SET LOCAL search_path TO " + pgx.Identifier{tenant.Schema}.Sanitize() + ", public"
}

// inTenant runs fn in a transaction scoped to the tenant schema. SET LOCAL
// keeps the search path from leaking to the next borrower of the connection.
func inTenant[T any](ctx context.Context, pool *pgxpool.Pool, tenant domain.TenantRef, mode pgx.TxAccessMode, fn func(pgx.Tx) (T, error)) (T, error) {
	var zero T
	if tenant.IsZero() {
		return zero, domain.NewValidationError("tenant", "tenant is required")
	}
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{AccessMode: mode})
	if err != nil {
		return zero, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, searchPathSQL(tenant)); err != nil {
		return zero, fmt.Errorf("set search_path: %w", err)
	}
	out, err := fn(tx)
	if err != nil {
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}
