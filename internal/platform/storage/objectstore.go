// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"

	"github.com/nats-io/nats.go/jetstream"
)

// Object metadata keys written alongside each asset.
const (
	metaContentType  = "content-type"
	metaOriginalName = "original-name"
)

// ObjectStore keeps assets in a NATS JetStream ObjectStore bucket.
//
// JetStream objects are chunked and replicated by the server; a Delete marks
// the object deleted and purges its chunks.
type ObjectStore struct {
	bucket    jetstream.ObjectStore
	name      string
	urlPrefix string
}

// NewObjectStore opens bucket, creating it on first use.
func NewObjectStore(ctx context.Context, js jetstream.JetStream, bucket, urlPrefix string) (*ObjectStore, error) {
	objects, err := js.ObjectStore(ctx, bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		objects, err = js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
			Bucket:      bucket,
			Description: "Reel series assets (thumbnails, music, media)",
			Storage:     jetstream.FileStorage,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open object store %s: %w", bucket, err)
	}

	return &ObjectStore{bucket: objects, name: bucket, urlPrefix: urlPrefix}, nil
}

// Put streams body into a new object.
func (store *ObjectStore) Put(ctx context.Context, body io.Reader, meta Meta) (Object, error) {
	key := NewKey(meta.OriginalName)

	contentType := meta.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(key))
	}

	_, err := store.bucket.Put(ctx, jetstream.ObjectMeta{
		Name: key,
		Metadata: map[string]string{
			metaContentType:  contentType,
			metaOriginalName: meta.OriginalName,
		},
	}, body)
	if err != nil {
		return Object{}, fmt.Errorf("storage: put %s/%s: %w", store.name, key, err)
	}

	return Object{Key: key, URL: store.URL(key)}, nil
}

// Delete removes key. Missing objects count as deleted.
func (store *ObjectStore) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	if err := store.bucket.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrObjectNotFound) {
		return fmt.Errorf("storage: delete %s/%s: %w", store.name, key, err)
	}
	return nil
}

// Open streams the object at key.
func (store *ObjectStore) Open(ctx context.Context, key string) (io.ReadCloser, Info, error) {
	if !ValidKey(key) {
		return nil, Info{}, ErrNotFound
	}

	result, err := store.bucket.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, Info{}, ErrNotFound
		}
		return nil, Info{}, fmt.Errorf("storage: get %s/%s: %w", store.name, key, err)
	}

	objectInfo, err := result.Info()
	if err != nil {
		result.Close()
		return nil, Info{}, fmt.Errorf("storage: info %s/%s: %w", store.name, key, err)
	}

	contentType := objectInfo.Metadata[metaContentType]
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(key))
	}

	return result, Info{Key: key, ContentType: contentType, Size: int64(objectInfo.Size)}, nil
}

// List returns all live object names in lexicographic order.
func (store *ObjectStore) List(ctx context.Context) ([]string, error) {
	infos, err := store.bucket.List(ctx)
	if errors.Is(err, jetstream.ErrNoObjectsFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", store.name, err)
	}

	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Deleted {
			continue
		}
		keys = append(keys, info.Name)
	}
	sort.Strings(keys)
	return keys, nil
}

// URL returns the public reference for key.
func (store *ObjectStore) URL(key string) string {
	return store.urlPrefix + key
}

// KeyFromReference accepts "<urlPrefix><key>" and bare keys.
func (store *ObjectStore) KeyFromReference(ref string) (string, bool) {
	return keyFromReference(ref, store.urlPrefix)
}

// Ping reads the bucket status.
func (store *ObjectStore) Ping(ctx context.Context) error {
	if _, err := store.bucket.Status(ctx); err != nil {
		return fmt.Errorf("storage: object store status: %w", err)
	}
	return nil
}
