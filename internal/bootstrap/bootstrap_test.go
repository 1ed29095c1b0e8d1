// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/reel/internal/core/series"
	"github.com/taibuivan/reel/internal/platform/config"
	"github.com/taibuivan/reel/pkg/pointer"
)

func TestOpen_FileAndLocal(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DocumentBackend: config.DocumentBackendFile,
		DocumentPath:    filepath.Join(dir, "data", "series.json"),
		AssetBackend:    config.AssetBackendLocal,
		UploadDir:       filepath.Join(dir, "uploads"),
		AssetURLPrefix:  "/uploads/",
	}

	infra, err := Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer infra.Close()

	assert.Equal(t, "file", infra.Documents.Name())
	for _, check := range infra.Checks() {
		assert.NoError(t, check.Ping(context.Background()), check.Name)
	}

	service := infra.Service(nil)
	created, err := service.CreateSeries(context.Background(), series.CreateInput{Title: pointer.To("Road Trip")})
	require.NoError(t, err)
	assert.FileExists(t, cfg.DocumentPath)

	list, err := service.ListSeries(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := &config.Config{DocumentBackend: "sqlite", AssetBackend: config.AssetBackendLocal}

	_, err := Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "unknown document backend")
}
