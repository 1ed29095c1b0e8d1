// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores the document under a single Redis key. SET replaces the
// value atomically, so readers see either the old or the new document.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend creates a Redis-backed document backend.
func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	return &RedisBackend{client: client, key: key}
}

// Name implements [Backend].
func (backend *RedisBackend) Name() string { return "redis" }

/*
Read returns the stored document bytes.

Returns:
  - []byte: Raw JSON
  - error: ErrDocumentNotExist when the key is absent, or connectivity errors
*/
func (backend *RedisBackend) Read(context context.Context) ([]byte, error) {
	data, err := backend.client.Get(context, backend.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDocumentNotExist
		}
		return nil, fmt.Errorf("redis_document_get_failed: %w", err)
	}
	return data, nil
}

// Write implements [Backend]. The key never expires.
func (backend *RedisBackend) Write(context context.Context, data []byte) error {
	if err := backend.client.Set(context, backend.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis_document_set_failed: %w", err)
	}
	return nil
}

// Ping implements [Backend].
func (backend *RedisBackend) Ping(context context.Context) error {
	return backend.client.Ping(context).Err()
}

// Quarantine copies unparsable bytes to "<key>:corrupt:<ts>".
func (backend *RedisBackend) Quarantine(context context.Context, data []byte) (string, error) {
	target := fmt.Sprintf("%s:corrupt:%s", backend.key, time.Now().UTC().Format(quarantineFmt))
	if err := backend.client.Set(context, target, data, 0).Err(); err != nil {
		return "", fmt.Errorf("redis_document_quarantine_failed: %w", err)
	}
	return target, nil
}
