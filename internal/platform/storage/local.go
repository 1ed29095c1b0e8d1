// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// tempPrefix marks in-flight uploads so List never reports them.
const tempPrefix = ".upload-"

// LocalStore keeps assets as flat files in a single directory.
type LocalStore struct {
	dir       string
	urlPrefix string
}

// NewLocalStore creates the directory if needed. urlPrefix is prepended to
// keys to form public references (e.g. "/uploads/").
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: urlPrefix}, nil
}

// Put writes body to a temp file then renames it into place, so a key is
// never visible with partial content.
func (store *LocalStore) Put(ctx context.Context, body io.Reader, meta Meta) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	key := NewKey(meta.OriginalName)

	tmp, err := os.CreateTemp(store.dir, tempPrefix+"*")
	if err != nil {
		return Object{}, fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Object{}, fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return Object{}, fmt.Errorf("storage: close %s: %w", key, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(store.dir, key)); err != nil {
		os.Remove(tmpPath)
		return Object{}, fmt.Errorf("storage: rename %s: %w", key, err)
	}

	return Object{Key: key, URL: store.URL(key)}, nil
}

// Delete removes the file for key. A missing file counts as deleted.
func (store *LocalStore) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	if err := os.Remove(filepath.Join(store.dir, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// Open returns the file for key.
func (store *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, Info, error) {
	if !ValidKey(key) {
		return nil, Info{}, ErrNotFound
	}

	file, err := os.Open(filepath.Join(store.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Info{}, ErrNotFound
		}
		return nil, Info{}, fmt.Errorf("storage: open %s: %w", key, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, Info{}, fmt.Errorf("storage: stat %s: %w", key, err)
	}

	return file, Info{
		Key:         key,
		ContentType: mime.TypeByExtension(filepath.Ext(key)),
		Size:        stat.Size(),
	}, nil
}

// List returns the stored keys in lexicographic order.
func (store *LocalStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(store.dir)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", store.dir, err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		keys = append(keys, entry.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

// URL returns the public path for key.
func (store *LocalStore) URL(key string) string {
	return store.urlPrefix + key
}

// KeyFromReference accepts "<urlPrefix><key>" and bare keys.
func (store *LocalStore) KeyFromReference(ref string) (string, bool) {
	return keyFromReference(ref, store.urlPrefix)
}

// Ping checks the upload directory is still there and is a directory.
func (store *LocalStore) Ping(ctx context.Context) error {
	stat, err := os.Stat(store.dir)
	if err != nil {
		return fmt.Errorf("storage: upload directory: %w", err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("storage: %s is not a directory", store.dir)
	}
	return nil
}
