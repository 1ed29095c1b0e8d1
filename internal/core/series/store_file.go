// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	filePerm      = 0o644
	lockRetry     = 50 * time.Millisecond
	quarantineFmt = "20060102T150405"
)

// FileBackend stores the document as one JSON file on local disk.
//
// Writes go to a temp file in the same directory and are renamed over the
// target, so a crash never leaves a truncated document. A flock on
// "<path>.lock" is held for the duration of each write.
type FileBackend struct {
	path string
	lock *flock.Flock
}

// NewFileBackend prepares the parent directory of path.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}
	return &FileBackend{path: path, lock: flock.New(path + ".lock")}, nil
}

// Name implements [Backend].
func (backend *FileBackend) Name() string { return "file" }

// Path returns the document location.
func (backend *FileBackend) Path() string { return backend.path }

// Read implements [Backend].
func (backend *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(backend.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrDocumentNotExist
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write implements [Backend].
func (backend *FileBackend) Write(ctx context.Context, data []byte) error {
	locked, err := backend.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("acquire document lock: %w", err)
	}
	if !locked {
		return errors.New("acquire document lock: not acquired")
	}
	defer func() { _ = backend.lock.Unlock() }()

	return writeFileAtomic(backend.path, data)
}

// Ping checks that the document directory is still accessible.
func (backend *FileBackend) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(backend.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(backend.path))
	}
	return nil
}

// Quarantine copies unparsable bytes next to the document.
func (backend *FileBackend) Quarantine(_ context.Context, data []byte) (string, error) {
	target := fmt.Sprintf("%s.corrupt-%s", backend.path, time.Now().UTC().Format(quarantineFmt))
	if err := writeFileAtomic(target, data); err != nil {
		return "", err
	}
	return target, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".document-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
