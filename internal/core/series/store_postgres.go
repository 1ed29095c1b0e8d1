// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/reel/internal/platform/database/schema"
	"github.com/taibuivan/reel/internal/platform/dberr"
)

// PostgresBackend stores the document as one jsonb row keyed by name. The
// table is created by the migrations under MIGRATION_PATH.
type PostgresBackend struct {
	db   *pgxpool.Pool
	name string
}

// NewPostgresBackend creates a Postgres-backed document backend.
func NewPostgresBackend(db *pgxpool.Pool, name string) *PostgresBackend {
	return &PostgresBackend{db: db, name: name}
}

// Name implements [Backend].
func (backend *PostgresBackend) Name() string { return "postgres" }

// Read implements [Backend].
func (backend *PostgresBackend) Read(context context.Context) ([]byte, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.ReelDocument.Body, schema.ReelDocument.Table, schema.ReelDocument.Name)

	var body []byte
	if err := backend.db.QueryRow(context, query, backend.name).Scan(&body); err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrDocumentNotExist
		}
		return nil, dberr.Wrap(err, "read_document")
	}
	return body, nil
}

// Write upserts the row in a single statement.
func (backend *PostgresBackend) Write(context context.Context, data []byte) error {
	return backend.upsert(context, backend.name, data, "write_document")
}

// Ping implements [Backend].
func (backend *PostgresBackend) Ping(context context.Context) error {
	return backend.db.Ping(context)
}

// Quarantine stores unparsable bytes under "<name>:corrupt:<ts>". Bytes that
// are not valid JSON cannot enter a jsonb column, so they are wrapped in a
// JSON string.
func (backend *PostgresBackend) Quarantine(context context.Context, data []byte) (string, error) {
	target := fmt.Sprintf("%s:corrupt:%s", backend.name, time.Now().UTC().Format(quarantineFmt))
	body, err := jsonString(data)
	if err != nil {
		return "", err
	}
	if err := backend.upsert(context, target, body, "quarantine_document"); err != nil {
		return "", err
	}
	return target, nil
}

func (backend *PostgresBackend) upsert(context context.Context, name string, data []byte, action string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s
	`,
		schema.ReelDocument.Table, schema.ReelDocument.Name, schema.ReelDocument.Body, schema.ReelDocument.UpdatedAt,
		schema.ReelDocument.Name,
		schema.ReelDocument.Body, schema.ReelDocument.Body,
		schema.ReelDocument.UpdatedAt, schema.ReelDocument.UpdatedAt,
	)

	if _, err := backend.db.Exec(context, query, name, string(data)); err != nil {
		return dberr.Wrap(err, action)
	}
	return nil
}

func jsonString(data []byte) ([]byte, error) {
	body, err := json.Marshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("encode quarantined document: %w", err)
	}
	return body, nil
}
