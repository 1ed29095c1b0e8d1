// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/taibuivan/reel/internal/core/series"
	"github.com/taibuivan/reel/internal/platform/storage"
)

const urlPrefix = "/uploads/"

// fakeAssets is an in-memory storage.AssetStore with failure injection.
type fakeAssets struct {
	mu         sync.Mutex
	objects    map[string][]byte
	deleted    []string
	failDelete map[string]error
	panicKey   string
	failPut    error
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{objects: map[string][]byte{}, failDelete: map[string]error{}}
}

func (f *fakeAssets) Put(_ context.Context, body io.Reader, meta storage.Meta) (storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut != nil {
		return storage.Object{}, f.failPut
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.Object{}, err
	}
	key := storage.NewKey(meta.OriginalName)
	f.objects[key] = data
	return storage.Object{Key: key, URL: urlPrefix + key}, nil
}

func (f *fakeAssets) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if key == f.panicKey {
		panic("store exploded")
	}
	if err := f.failDelete[key]; err != nil {
		return err
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeAssets) Open(_ context.Context, key string) (io.ReadCloser, storage.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.Info{}, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), storage.Info{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeAssets) List(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

func (f *fakeAssets) URL(key string) string { return urlPrefix + key }

func (f *fakeAssets) KeyFromReference(ref string) (string, bool) {
	if strings.HasPrefix(ref, urlPrefix) {
		return strings.TrimPrefix(ref, urlPrefix), true
	}
	if ref == "" || strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return "", false
	}
	return ref, true
}

func (f *fakeAssets) Ping(context.Context) error { return nil }

func (f *fakeAssets) seed(keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		f.objects[key] = []byte(key)
	}
}

func (f *fakeAssets) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.deleted)
}

func (f *fakeAssets) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRepository(assets *fakeAssets) *series.Repository {
	logger := discardLogger()
	return series.NewRepository(series.NewLifecycle(assets, nil, logger), logger)
}

func newService(t *testing.T, backend *series.MemoryBackend) (*series.Service, *fakeAssets) {
	t.Helper()
	logger := discardLogger()
	assets := newFakeAssets()
	store := series.NewDocumentStore(backend, nil, logger)
	return series.NewService(store, assets, nil, logger), assets
}
