// Command fileharbor serves a sandboxed file manager over HTTP: listing,
// streaming upload/download, mutations and filename search confined to a
// single storage root, with optional JWT authentication.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fileharbor/fileharbor/internal/api"
	"github.com/fileharbor/fileharbor/pkg/auth"
	"github.com/fileharbor/fileharbor/pkg/config"
	"github.com/fileharbor/fileharbor/pkg/httpserver"
	"github.com/fileharbor/fileharbor/pkg/logger"
	"github.com/fileharbor/fileharbor/pkg/metrics"
	"github.com/fileharbor/fileharbor/pkg/pg"
	"github.com/fileharbor/fileharbor/pkg/redis"
	"github.com/fileharbor/fileharbor/pkg/storage"
)

func main() {
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg, logger.WithAttr(slog.String("app", "fileharbor")))

	if err := run(context.Background(), log); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		httpCfg    httpserver.Config
		storageCfg storage.Config
		authCfg    auth.Config
	)
	config.MustLoad(&httpCfg)
	config.MustLoad(&storageCfg)
	config.MustLoad(&authCfg)

	m := metrics.New()

	store, err := storage.New(storageCfg,
		storage.WithLogger(log),
		storage.WithRecorder(m),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("storage ready",
		slog.String("root", store.Root()),
		slog.Int64("max_upload_size", storageCfg.MaxUploadSize),
	)

	opts := []api.Option{
		api.WithLogger(log),
		api.WithMetrics(m),
		api.WithRequestTimeout(storageCfg.RequestTimeout),
	}

	if authCfg.Enabled {
		authSvc, cleanup, err := buildAuth(ctx, authCfg, log)
		if err != nil {
			return err
		}
		defer cleanup()
		opts = append(opts, api.WithAuth(authSvc, true))
	} else {
		log.Warn("authentication is disabled; all endpoints are open")
	}

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, api.NewRouter(store, opts...))
}

// buildAuth connects Postgres (running pending migrations) and Redis, then
// assembles the auth service. The returned cleanup closes both connections.
func buildAuth(ctx context.Context, cfg auth.Config, log *slog.Logger) (*auth.Service, func(), error) {
	var (
		pgCfg    pg.Config
		redisCfg redis.Config
	)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rdb, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	svc := auth.NewService(auth.NewPGUserStore(pool), tokens, auth.NewRedisRevoker(rdb))
	cleanup := func() {
		_ = rdb.Close()
		pool.Close()
	}
	return svc, cleanup, nil
}
