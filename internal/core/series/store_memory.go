// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"sync"
)

// MemoryBackend keeps the document in process memory. It backs tests and
// dry runs of the CLI.
type MemoryBackend struct {
	mu       sync.Mutex
	data     []byte
	writes   int
	ReadErr  error
	WriteErr error
}

// NewMemoryBackend returns a backend seeded with data; nil means no document.
func NewMemoryBackend(data []byte) *MemoryBackend {
	return &MemoryBackend{data: data}
}

// Name implements [Backend].
func (backend *MemoryBackend) Name() string { return "memory" }

// Read implements [Backend].
func (backend *MemoryBackend) Read(_ context.Context) ([]byte, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	if backend.ReadErr != nil {
		return nil, backend.ReadErr
	}
	if backend.data == nil {
		return nil, ErrDocumentNotExist
	}
	return append([]byte(nil), backend.data...), nil
}

// Write implements [Backend].
func (backend *MemoryBackend) Write(_ context.Context, data []byte) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	if backend.WriteErr != nil {
		return backend.WriteErr
	}
	backend.data = append([]byte(nil), data...)
	backend.writes++
	return nil
}

// Ping implements [Backend].
func (backend *MemoryBackend) Ping(_ context.Context) error { return nil }

// Bytes returns a copy of the stored document.
func (backend *MemoryBackend) Bytes() []byte {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	return append([]byte(nil), backend.data...)
}

// Writes reports how many successful writes happened.
func (backend *MemoryBackend) Writes() int {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	return backend.writes
}
