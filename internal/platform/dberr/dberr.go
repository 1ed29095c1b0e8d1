// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsNoRows reports whether err means the query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Wrap annotates a database error with the action that produced it. The
// Postgres SQLSTATE, when present, is kept in the message for operators.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("postgres_%s_failed (sqlstate %s): %w", action, pgErr.Code, err)
	}

	return fmt.Errorf("postgres_%s_failed: %w", action, err)
}
