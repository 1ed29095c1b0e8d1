// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/reel/internal/platform/config"
)

/*
TestLoad_Defaults parses a bare environment into a runnable file/local setup.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.DocumentBackendFile, cfg.DocumentBackend)
	assert.Equal(t, config.AssetBackendLocal, cfg.AssetBackend)
	assert.Equal(t, "/uploads/", cfg.AssetURLPrefix)
	assert.EqualValues(t, 500<<20, cfg.MaxUploadBytes())
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_Validation rejects combinations the backends cannot start with.
*/
func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown_document_backend", map[string]string{"DOCUMENT_BACKEND": "s3"}},
		{"redis_without_url", map[string]string{"DOCUMENT_BACKEND": "redis"}},
		{"postgres_without_url", map[string]string{"DOCUMENT_BACKEND": "postgres"}},
		{"unknown_asset_backend", map[string]string{"ASSET_BACKEND": "ftp"}},
		{"nats_without_url", map[string]string{"ASSET_BACKEND": "nats"}},
		{"prefix_not_a_path", map[string]string{"ASSET_URL_PREFIX": "https://cdn.example/"}},
		{"zero_upload_limit", map[string]string{"MAX_UPLOAD_MB": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

/*
TestOrigins trims and drops empty entries.
*/
func TestOrigins(t *testing.T) {
	cfg := &config.Config{AllowedOrigins: " https://a.example, ,https://b.example "}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	assert.Empty(t, (&config.Config{}).Origins())
}
