// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgx5DSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://reel:secret@db:5432/reel", "pgx5://reel:secret@db:5432/reel"},
		{"postgresql://db/reel?sslmode=disable", "pgx5://db/reel?sslmode=disable"},
		{"pgx5://db/reel", "pgx5://db/reel"},
		{"host=db dbname=reel", "host=db dbname=reel"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pgx5DSN(tt.in), tt.in)
	}
}
