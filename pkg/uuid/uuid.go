// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps the standard UUID library to specifically generate Version 7 values.
Series ids, media item ids, request ids and asset keys all come from here, so
identifiers created later always sort after earlier ones.
*/
package uuid

import (
	"strings"

	"github.com/google/uuid"
)

// # Generators

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// Compact generates a new UUIDv7 without hyphens, suitable for file names.
func Compact() string {
	return strings.ReplaceAll(New(), "-", "")
}

// # Validation

// IsValid reports whether s parses as any UUID.
func IsValid(s string) bool {
	return uuid.Validate(s) == nil
}
