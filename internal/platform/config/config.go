// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
honoured when present so development setups need no exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to the document and asset backends via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Backend Identifiers

const (
	DocumentBackendFile     = "file"
	DocumentBackendRedis    = "redis"
	DocumentBackendPostgres = "postgres"

	AssetBackendLocal = "local"
	AssetBackendNATS  = "nats"
)

// # Configuration Schema

// Config holds all runtime configuration for the Reel API server and CLI.
type Config struct {

	// Server settings
	ServerPort     string `env:"SERVER_PORT"      envDefault:"8080"`
	Environment    string `env:"ENVIRONMENT"      envDefault:"development"`
	Debug          bool   `env:"DEBUG"            envDefault:"false"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
	MetricsEnabled bool   `env:"METRICS_ENABLED"  envDefault:"true"`

	// Series document persistence
	DocumentBackend string `env:"DOCUMENT_BACKEND" envDefault:"file"`
	DocumentPath    string `env:"DOCUMENT_PATH"    envDefault:"./data/series.json"`
	DocumentKey     string `env:"DOCUMENT_KEY"     envDefault:"reel:document"`

	// Relational Database (PostgreSQL), used by the postgres document backend
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis), used by the redis document backend
	RedisURL string `env:"REDIS_URL"`

	// Binary asset storage
	AssetBackend   string `env:"ASSET_BACKEND"    envDefault:"local"`
	UploadDir      string `env:"UPLOAD_DIR"       envDefault:"./data/uploads"`
	AssetURLPrefix string `env:"ASSET_URL_PREFIX" envDefault:"/uploads/"`
	NATSURL        string `env:"NATS_URL"`
	NATSBucket     string `env:"NATS_BUCKET"      envDefault:"reel-assets"`
	MaxUploadMB    int64  `env:"MAX_UPLOAD_MB"    envDefault:"500"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// Variables from a '.env' file in the working directory are applied first
// without overriding anything already set in the process environment.
func Load() (*Config, error) {

	// Missing .env is the normal production case
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.DocumentBackend {
	case DocumentBackendFile:
		if strings.TrimSpace(c.DocumentPath) == "" {
			return errors.New("config: DOCUMENT_PATH is required for the file document backend")
		}
	case DocumentBackendRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL is required for the redis document backend")
		}
	case DocumentBackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres document backend")
		}
	default:
		return fmt.Errorf("config: unknown DOCUMENT_BACKEND %q", c.DocumentBackend)
	}

	switch c.AssetBackend {
	case AssetBackendLocal:
		if strings.TrimSpace(c.UploadDir) == "" {
			return errors.New("config: UPLOAD_DIR is required for the local asset backend")
		}
	case AssetBackendNATS:
		if c.NATSURL == "" {
			return errors.New("config: NATS_URL is required for the nats asset backend")
		}
	default:
		return fmt.Errorf("config: unknown ASSET_BACKEND %q", c.AssetBackend)
	}

	if !strings.HasPrefix(c.AssetURLPrefix, "/") || !strings.HasSuffix(c.AssetURLPrefix, "/") {
		return errors.New("config: ASSET_URL_PREFIX must be a path that starts and ends with '/'")
	}

	if c.MaxUploadMB <= 0 {
		return errors.New("config: MAX_UPLOAD_MB must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Origins returns the comma separated ALLOWED_ORIGINS as a trimmed slice.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// MaxUploadBytes converts MaxUploadMB into bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
