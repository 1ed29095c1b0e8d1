// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package bootstrap opens the document and asset backends selected by
// configuration. Both the API server and reelctl build their series service
// from it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/reel/internal/api"
	"github.com/taibuivan/reel/internal/core/series"
	"github.com/taibuivan/reel/internal/platform/config"
	"github.com/taibuivan/reel/internal/platform/metrics"
	natsclient "github.com/taibuivan/reel/internal/platform/nats"
	pgstore "github.com/taibuivan/reel/internal/platform/postgres"
	redisstore "github.com/taibuivan/reel/internal/platform/redis"
	"github.com/taibuivan/reel/internal/platform/storage"
)

// Infrastructure holds the opened backends and the connections behind them.
type Infrastructure struct {
	Documents series.Backend
	Assets    storage.AssetStore

	closers []closer
	logger  *slog.Logger
}

type closer struct {
	name  string
	close func() error
}

// Open connects every backend named in cfg. On failure, whatever was already
// opened is closed before the error is returned.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{logger: logger}

	documents, err := infra.openDocuments(ctx, cfg)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Documents = documents

	assets, err := infra.openAssets(ctx, cfg)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Assets = assets

	logger.Info("backends_opened",
		slog.String("document_backend", documents.Name()),
		slog.String("asset_backend", cfg.AssetBackend),
	)
	return infra, nil
}

func (infra *Infrastructure) openDocuments(ctx context.Context, cfg *config.Config) (series.Backend, error) {
	switch cfg.DocumentBackend {
	case config.DocumentBackendFile:
		return series.NewFileBackend(cfg.DocumentPath)

	case config.DocumentBackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, infra.logger)
		if err != nil {
			return nil, err
		}
		infra.onClose("redis", client.Close)
		return series.NewRedisBackend(client, cfg.DocumentKey), nil

	case config.DocumentBackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, infra.logger)
		if err != nil {
			return nil, err
		}
		infra.onClose("postgres", func() error { pool.Close(); return nil })
		return series.NewPostgresBackend(pool, cfg.DocumentKey), nil
	}
	return nil, fmt.Errorf("bootstrap: unknown document backend %q", cfg.DocumentBackend)
}

func (infra *Infrastructure) openAssets(ctx context.Context, cfg *config.Config) (storage.AssetStore, error) {
	switch cfg.AssetBackend {
	case config.AssetBackendLocal:
		return storage.NewLocalStore(cfg.UploadDir, cfg.AssetURLPrefix)

	case config.AssetBackendNATS:
		client, err := natsclient.NewClient(cfg.NATSURL, infra.logger)
		if err != nil {
			return nil, err
		}
		infra.onClose("nats", client.Close)
		return storage.NewObjectStore(ctx, client.JetStream, cfg.NATSBucket, cfg.AssetURLPrefix)
	}
	return nil, fmt.Errorf("bootstrap: unknown asset backend %q", cfg.AssetBackend)
}

func (infra *Infrastructure) onClose(name string, fn func() error) {
	infra.closers = append(infra.closers, closer{name: name, close: fn})
}

// Checks returns the readiness probes for both backends.
func (infra *Infrastructure) Checks() []api.Check {
	return []api.Check{
		{Name: "document:" + infra.Documents.Name(), Ping: infra.Documents.Ping},
		{Name: "assets", Ping: infra.Assets.Ping},
	}
}

// Service builds the series service over the opened backends.
func (infra *Infrastructure) Service(registry *metrics.Registry) *series.Service {
	store := series.NewDocumentStore(infra.Documents, registry, infra.logger)
	return series.NewService(store, infra.Assets, registry, infra.logger)
}

// Close releases connections in reverse order of opening.
func (infra *Infrastructure) Close() error {
	var errs []error
	for i := len(infra.closers) - 1; i >= 0; i-- {
		c := infra.closers[i]
		if err := c.close(); err != nil {
			infra.logger.Error("backend_close_failed", slog.String("backend", c.name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	infra.closers = nil
	return errors.Join(errs...)
}
