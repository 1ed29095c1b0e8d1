// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/reel/internal/platform/ctxutil"
	"github.com/taibuivan/reel/internal/platform/metrics"
)

// AssetRemover is the part of [storage.AssetStore] the coordinator needs.
type AssetRemover interface {
	Delete(ctx context.Context, key string) error
	KeyFromReference(ref string) (string, bool)
}

// # Lifecycle Coordinator

// Lifecycle sequences asset deletion against document mutation.
//
// Deleting an asset and editing the document are two independent steps, not a
// transaction. A failed delete is logged and counted, and the document change
// goes ahead anyway. The accepted cost is an occasional orphaned file; the
// document never loses its pointer to a newly attached asset.
type Lifecycle struct {
	assets  AssetRemover
	metrics *metrics.Registry
	logger  *slog.Logger
}

// NewLifecycle constructs a coordinator. registry may be nil.
func NewLifecycle(assets AssetRemover, registry *metrics.Registry, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{assets: assets, metrics: registry, logger: logger}
}

/*
Release attempts to delete the asset behind ref.

Description: Resolves ref to a storage key and deletes it. Unrecognised
references (e.g. legacy local paths) are skipped. Errors and panics from the
store are logged and never propagated.

Returns:
  - bool: true when the store confirmed the deletion
*/
func (lifecycle *Lifecycle) Release(ctx context.Context, ref string) (released bool) {
	logger := ctxutil.LoggerOr(ctx, lifecycle.logger)

	key, ok := lifecycle.assets.KeyFromReference(ref)
	if !ok {
		lifecycle.metrics.AssetOperation("delete", metrics.ResultSkipped)
		logger.WarnContext(ctx, "asset_reference_unrecognised", slog.String("reference", ref))
		return false
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			lifecycle.metrics.AssetOperation("delete", metrics.ResultError)
			logger.ErrorContext(ctx, "asset_delete_failed",
				slog.String("key", key),
				slog.Any("error", fmt.Errorf("panic: %v", recovered)),
			)
			released = false
		}
	}()

	if err := lifecycle.assets.Delete(ctx, key); err != nil {
		lifecycle.metrics.AssetOperation("delete", metrics.ResultError)
		logger.ErrorContext(ctx, "asset_delete_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	lifecycle.metrics.AssetOperation("delete", metrics.ResultOK)
	logger.DebugContext(ctx, "asset_deleted", slog.String("key", key))
	return true
}

// ReleaseAll attempts one deletion per reference, in order, and returns how
// many did not succeed. A failure never stops the remaining deletions.
func (lifecycle *Lifecycle) ReleaseAll(ctx context.Context, refs []string) (failed int) {
	for _, ref := range refs {
		if !lifecycle.Release(ctx, ref) {
			failed++
		}
	}
	return failed
}

/*
Replace points slot at next and releases whatever slot pointed at before.

Description: The old asset is deleted first (awaited, failure logged), then the
new reference is applied unconditionally. Re-attaching the same reference is a
no-op for storage so the live asset is never deleted.

Parameters:
  - slot: **string (Thumbnail or Music field of the working document)
  - next: string (New asset reference)
*/
func (lifecycle *Lifecycle) Replace(ctx context.Context, slot **string, next string) {
	if old := *slot; old != nil && *old != next {
		lifecycle.Release(ctx, *old)
	}
	*slot = &next
}

// Clear releases the asset in slot, if any, and sets it to nil.
func (lifecycle *Lifecycle) Clear(ctx context.Context, slot **string) {
	if old := *slot; old != nil {
		lifecycle.Release(ctx, *old)
	}
	*slot = nil
}
