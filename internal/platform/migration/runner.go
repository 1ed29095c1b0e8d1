// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the SQL migrations that create the tables used by
// the postgres document backend.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Status is the schema version recorded in the database.
type Status struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	// Applied reports whether Up moved the schema forward.
	Applied bool `json:"applied"`
}

// Up applies every pending migration found under path.
//
// A dirty schema is refused: a previous run failed halfway and needs an
// operator to force a version before anything else is applied.
func Up(dsn, path string, logger *slog.Logger) (Status, error) {
	migrator, err := open(dsn, path, logger)
	if err != nil {
		return Status{}, err
	}
	defer closeMigrator(migrator, logger)

	from, dirty, err := version(migrator)
	if err != nil {
		return Status{}, err
	}
	if dirty {
		return Status{Version: from, Dirty: true}, fmt.Errorf("migration: schema is dirty at version %d", from)
	}

	logger.Info("migration_started", slog.Uint64("current_version", uint64(from)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date", slog.Uint64("version", uint64(from)))
			return Status{Version: from}, nil
		}
		return Status{Version: from}, fmt.Errorf("migration: up failed: %w", err)
	}

	to, dirty, err := version(migrator)
	if err != nil {
		return Status{}, err
	}
	logger.Info("migration_successful",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)
	return Status{Version: to, Dirty: dirty, Applied: true}, nil
}

// Version reports the current schema version without applying anything.
func Version(dsn, path string, logger *slog.Logger) (Status, error) {
	migrator, err := open(dsn, path, logger)
	if err != nil {
		return Status{}, err
	}
	defer closeMigrator(migrator, logger)

	current, dirty, err := version(migrator)
	if err != nil {
		return Status{}, err
	}
	return Status{Version: current, Dirty: dirty}, nil
}

func open(dsn, path string, logger *slog.Logger) (*migrate.Migrate, error) {
	migrator, err := migrate.New("file://"+path, Pgx5DSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}
	migrator.Log = &migrateLogger{logger: logger}
	return migrator, nil
}

// version treats an unversioned database as version 0.
func version(migrator *migrate.Migrate) (uint, bool, error) {
	current, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration: failed to get current version: %w", err)
	}
	return current, dirty, nil
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceErr, dbErr := migrator.Close()
	if sourceErr != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
	}
	if dbErr != nil {
		logger.Error("migration_db_close_failed", slog.Any("error", dbErr))
	}
}

// Pgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// the golang-migrate driver registers. Other values pass through unchanged.
func Pgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger routes golang-migrate's progress lines to slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_progress", slog.String("line", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l *migrateLogger) Verbose() bool {
	return false
}
