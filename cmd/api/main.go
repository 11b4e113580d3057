// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Etalage catalog HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Open the blob store and wire the catalog services.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/etalage/internal/api"
	"github.com/taibuivan/etalage/internal/core/category"
	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/core/listing"
	"github.com/taibuivan/etalage/internal/core/manufacturer"
	"github.com/taibuivan/etalage/internal/platform/blob"
	"github.com/taibuivan/etalage/internal/platform/config"
	"github.com/taibuivan/etalage/internal/platform/constants"
	"github.com/taibuivan/etalage/internal/platform/migration"
	pgstore "github.com/taibuivan/etalage/internal/platform/postgres"
	redisstore "github.com/taibuivan/etalage/internal/platform/redis"
	"github.com/taibuivan/etalage/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("default_language", cfg.DefaultLanguage),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, migration.Source(cfg.MigrationPath), log), "run migrations")

	// ── 6. Token verification ─────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Blob store ─────────────────────────────────────────────────────
	blobs, err := blob.NewFileStore(cfg.BlobRoot, cfg.BlobBaseURL)
	must(log, err, "open blob store")

	// ── 8. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(log,
		api.Probe{Name: "postgres", Check: func(context context.Context) error { return pgstore.Ping(context, pool) }},
		api.Probe{Name: "redis", Check: func(context context.Context) error { return redisstore.Ping(context, rdb) }},
		api.Probe{Name: "blobs", Check: blobs.Ping},
	)

	// ── 9. Catalog Wiring ─────────────────────────────────────────────────
	resolver := image.NewResolver(blobs, log)

	categoryService := category.NewService(category.NewPostgresRepository(pool), cfg.DefaultLanguage, log)
	manufacturerService := manufacturer.NewService(manufacturer.NewPostgresRepository(pool), resolver, log)
	listingService := listing.NewService(
		listing.NewPostgresRepository(pool),
		resolver,
		listing.NewRedisVariantCache(rdb, cfg.VariantCacheTTL),
		cfg.DefaultLanguage,
		log,
	)

	// ── 10. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Category:     category.NewHandler(categoryService),
		Manufacturer: manufacturer.NewHandler(manufacturerService),
		Listing:      listing.NewHandler(listingService),
		Product:      listing.NewProductHandler(listingService),
		Media:        http.FileServer(http.Dir(blobs.Root())),
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
