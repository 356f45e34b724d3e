// Package application assembles the ingestion service from configuration.
// Both binaries build through New so the HTTP server and the CLI run the
// same wiring.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/edupath-ingest/internal/config"
	"github.com/JonMunkholm/edupath-ingest/internal/core"
	"github.com/JonMunkholm/edupath-ingest/internal/graph"
	"github.com/JonMunkholm/edupath-ingest/internal/notify"
	"github.com/JonMunkholm/edupath-ingest/internal/runlog"
)

// App holds the assembled service and the resources it owns.
type App struct {
	Service *core.Service

	pool  *pgxpool.Pool
	redis *redis.Client
}

// New connects the configured backends and builds the service. An empty
// DATABASE_URL selects in-memory stores and an empty NOTIFY_REDIS_URL
// logs completion events instead of publishing them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	runs, store, err := app.openStores(ctx, &cfg.Database)
	if err != nil {
		app.Close()
		return nil, err
	}

	pub, err := app.openPublisher(&cfg.Notify)
	if err != nil {
		app.Close()
		return nil, err
	}

	svc, err := core.NewService(core.Deps{
		Runs:  runs,
		Graph: store,
		Notifier: notify.New(pub,
			notify.WithChannel(cfg.Notify.Channel),
			notify.WithTimeout(cfg.Notify.PublishTimeout),
		),
		Validator:    core.NewValidator(cfg.Upload.MaxFileSize),
		Limiter:      core.NewRunLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		MaxRowErrors: cfg.Upload.MaxRowErrors,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}
	app.Service = svc
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.DatabaseConfig) (core.RunStore, graph.Store, error) {
	if cfg.InMemory() {
		slog.Warn("DATABASE_URL not set, using in-memory stores")
		return runlog.NewMemory(), graph.NewMemStore(), nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	a.pool = pool

	if err := pool.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("connected to database", "name", databaseName(cfg.URL))

	runs := runlog.NewPostgres(pool)
	store := graph.NewPGStore(pool)
	if cfg.EnsureSchema {
		if err := runs.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
	}
	return runs, store, nil
}

func (a *App) openPublisher(cfg *config.NotifyConfig) (notify.Publisher, error) {
	if cfg.RedisURL == "" {
		return notify.NewLogPublisher(slog.Default()), nil
	}
	client, err := notify.DialRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.redis = client
	slog.Info("publishing completion events to redis", "channel", cfg.Channel)
	return notify.NewRedisPublisher(client), nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func databaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
