package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolSettings sizes a connection pool. The API server and the one-shot
// tools want different sizes.
type PoolSettings struct {
	MaxConns int32
	MinConns int32
	// AppName shows up in pg_stat_activity.
	AppName string
}

var (
	ServerPool = PoolSettings{MaxConns: 10, MinConns: 2, AppName: "swinggity-api"}
	ToolPool   = PoolSettings{MaxConns: 2, MinConns: 0, AppName: "swinggity-tool"}
)

// NewPool opens a pgx pool and pings it. The pool is closed again if the
// ping fails.
func NewPool(ctx context.Context, databaseURL string, settings PoolSettings) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	cfg.MaxConns = settings.MaxConns
	cfg.MinConns = settings.MinConns
	cfg.MaxConnLifetime = 1 * time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second
	if settings.AppName != "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = settings.AppName
	}
	// Bounds every auth query; none of them should take long.
	cfg.ConnConfig.RuntimeParams["statement_timeout"] = "5000"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}
