// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Reel HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Run database migrations when the postgres document backend is selected.
//  4. Open the document and asset backends.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/reel/internal/api"
	"github.com/taibuivan/reel/internal/bootstrap"
	"github.com/taibuivan/reel/internal/core/series"
	"github.com/taibuivan/reel/internal/platform/config"
	"github.com/taibuivan/reel/internal/platform/constants"
	"github.com/taibuivan/reel/internal/platform/metrics"
	"github.com/taibuivan/reel/internal/platform/migration"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	log.Info("[Reel] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("document_backend", cfg.DocumentBackend),
		slog.String("asset_backend", cfg.AssetBackend),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Migrations ─────────────────────────────────────────────────────
	if cfg.DocumentBackend == config.DocumentBackendPostgres {
		_, err := migration.Up(cfg.DatabaseURL, cfg.MigrationPath, log)
		must(log, err, "run migrations")
	}

	// ── 4. Backends ───────────────────────────────────────────────────────
	infra, err := bootstrap.Open(startupCtx, cfg, log)
	must(log, err, "open backends")
	defer func() {
		log.Info("closing backends")
		_ = infra.Close()
	}()

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	var registry *metrics.Registry
	if cfg.MetricsEnabled {
		registry = metrics.New()
	}

	service := infra.Service(registry)
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{Checks: infra.Checks()}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Series:    series.NewHandler(service, infra.Assets, registry, cfg.MaxUploadBytes()),
		Assets:    api.NewAssetHandler(infra.Assets),
		Metrics:   registry,
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, handlers)

	// ── 6. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		rootCancel()
		_ = infra.Close()
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "reel"))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
