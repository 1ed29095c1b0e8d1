// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage defines the binary asset boundary used by the series core.

An [AssetStore] is durable key → bytes storage. Keys are flat, generated by the
store from the upload's original name, and safe to embed in URLs. The series
document only ever holds references (a key or a public URL) and resolves them
back to keys through [AssetStore.KeyFromReference].

Implementations:

  - LocalStore: files under a directory on local disk.
  - ObjectStore: a NATS JetStream ObjectStore bucket.

Both must be safe for concurrent use.
*/
package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/taibuivan/reel/pkg/slug"
	"github.com/taibuivan/reel/pkg/uuid"
)

// ErrNotFound is returned by [AssetStore.Open] for keys that do not exist.
var ErrNotFound = errors.New("storage: object not found")

// Meta describes an upload being written to the store.
type Meta struct {
	// OriginalName is the client supplied file name; only its slug reaches the key.
	OriginalName string
	// ContentType is the MIME type reported by the client, if any.
	ContentType string
	// Size is the byte length when known, or -1.
	Size int64
}

// Object identifies a stored asset.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Info is returned alongside an opened object.
type Info struct {
	Key         string
	ContentType string
	Size        int64
}

// AssetStore is the pluggable backend for binary assets.
type AssetStore interface {
	// Put stores the bytes read from body under a freshly generated key.
	Put(ctx context.Context, body io.Reader, meta Meta) (Object, error)

	// Delete removes the object at key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// Open streams the object at key. Callers must close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, Info, error)

	// List returns every key currently stored.
	List(ctx context.Context) ([]string, error)

	// URL builds the public reference for key.
	URL(key string) string

	// KeyFromReference maps a stored reference (public URL or bare key) back
	// to a key. It reports false for references this store does not recognise,
	// such as legacy paths written by an older deployment.
	KeyFromReference(ref string) (string, bool)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// # Key Helpers

// NewKey generates a flat, sortable key that keeps a readable trace of the
// original file name: "<uuidv7-compact>-<slug>.<ext>".
func NewKey(originalName string) string {
	return uuid.Compact() + "-" + slug.FileName(originalName)
}

// ValidKey reports whether key is a flat name this package could have generated.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return true
}

// keyFromReference strips prefix from ref when present and validates the rest.
// Bare keys are accepted unless they look like a rooted path or a URL.
func keyFromReference(ref, prefix string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	if prefix != "" && strings.HasPrefix(ref, prefix) {
		key := strings.TrimPrefix(ref, prefix)
		return key, ValidKey(key)
	}

	if strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return "", false
	}

	return ref, ValidKey(ref)
}
