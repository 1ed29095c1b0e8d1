// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/reel/internal/core/series"
	"github.com/taibuivan/reel/pkg/pointer"
)

/*
TestLifecycle_Replace covers the four outcomes of swapping an asset reference.
*/
func TestLifecycle_Replace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		old         *string
		next        string
		failDelete  bool
		wantDeleted []string
	}{
		{"no_previous_asset", nil, "/uploads/new.png", false, nil},
		{"previous_released", pointer.To("/uploads/old.png"), "/uploads/new.png", false, []string{"old.png"}},
		{"same_reference_kept", pointer.To("/uploads/same.png"), "/uploads/same.png", false, nil},
		{"delete_failure_still_applies", pointer.To("/uploads/old.png"), "/uploads/new.png", true, []string{"old.png"}},
		{"unrecognised_previous_skipped", pointer.To("/static/legacy.png"), "/uploads/new.png", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assets := newFakeAssets()
			if tt.failDelete {
				assets.failDelete["old.png"] = errors.New("disk gone")
			}
			lifecycle := series.NewLifecycle(assets, nil, discardLogger())

			slot := tt.old
			lifecycle.Replace(ctx, &slot, tt.next)

			require.NotNil(t, slot)
			assert.Equal(t, tt.next, *slot)
			assert.Equal(t, tt.wantDeleted, assets.deletedKeys())
		})
	}
}

/*
TestLifecycle_ReleaseRecoversPanics keeps the caller alive when the store panics.
*/
func TestLifecycle_ReleaseRecoversPanics(t *testing.T) {
	assets := newFakeAssets()
	assets.panicKey = "boom.png"
	lifecycle := series.NewLifecycle(assets, nil, discardLogger())

	assert.NotPanics(t, func() {
		assert.False(t, lifecycle.Release(context.Background(), "/uploads/boom.png"))
	})
}

/*
TestLifecycle_ReleaseAll attempts every reference and counts failures.
*/
func TestLifecycle_ReleaseAll(t *testing.T) {
	assets := newFakeAssets()
	assets.seed("a.png", "b.png", "c.png")
	assets.failDelete["b.png"] = errors.New("denied")
	lifecycle := series.NewLifecycle(assets, nil, discardLogger())

	failed := lifecycle.ReleaseAll(context.Background(), []string{"/uploads/a.png", "b.png", "/legacy/x.png", "/uploads/c.png"})

	// b failed, the legacy path was skipped
	assert.Equal(t, 2, failed)
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, assets.deletedKeys())
	assert.True(t, assets.has("b.png"))
	assert.False(t, assets.has("c.png"))
}

/*
TestLifecycle_Clear releases and nils the slot; an empty slot is untouched.
*/
func TestLifecycle_Clear(t *testing.T) {
	assets := newFakeAssets()
	lifecycle := series.NewLifecycle(assets, nil, discardLogger())

	slot := pointer.To("/uploads/track.mp3")
	lifecycle.Clear(context.Background(), &slot)
	assert.Nil(t, slot)

	lifecycle.Clear(context.Background(), &slot)
	assert.Equal(t, []string{"track.mp3"}, assets.deletedKeys())
}
