// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/reel/internal/core/series"
)

const legacyDocument = `{
  "showTitle": "X",
  "episodeCount": 2,
  "episodes": [
    {"title": "Pilot", "thumbnail": "/uploads/p.png", "music": null, "media": [
      {"id": "m1", "filename": "k1", "originalName": "clip.mp4", "type": "video", "url": "/uploads/k1"}
    ]},
    {"title": "Episode 2", "thumbnail": null, "music": null, "media": []}
  ]
}`

func newStore(backend series.Backend) *series.DocumentStore {
	return series.NewDocumentStore(backend, nil, discardLogger())
}

/*
TestDocumentStore_LoadMissing yields an empty document without writing.
*/
func TestDocumentStore_LoadMissing(t *testing.T) {
	backend := series.NewMemoryBackend(nil)

	doc, err := newStore(backend).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc.Series)
	assert.Empty(t, doc.Series)
	assert.Equal(t, 0, backend.Writes())
}

/*
TestDocumentStore_LoadUnparsable fails soft for every malformed input.
*/
func TestDocumentStore_LoadUnparsable(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "not json at all"},
		{"truncated", `{"series": [{"id": "a"`},
		{"wrong_series_type", `{"series": "oops"}`},
		{"wrong_legacy_type", `{"showTitle": 12}`},
		{"array_root", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := series.NewMemoryBackend([]byte(tt.data))

			doc, err := newStore(backend).Load(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, doc.Series)
			assert.Empty(t, doc.Series)
		})
	}
}

/*
TestDocumentStore_LoadReadError propagates backend failures.
*/
func TestDocumentStore_LoadReadError(t *testing.T) {
	backend := series.NewMemoryBackend(nil)
	backend.ReadErr = errors.New("connection refused")

	_, err := newStore(backend).Load(context.Background())
	assert.ErrorIs(t, err, backend.ReadErr)
}

/*
TestDocumentStore_LegacyMigration upgrades once and is idempotent afterwards.
*/
func TestDocumentStore_LegacyMigration(t *testing.T) {
	ctx := context.Background()
	backend := series.NewMemoryBackend([]byte(legacyDocument))
	store := newStore(backend)

	first, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, first.Series, 1)

	migrated := first.Series[0]
	assert.Equal(t, "X", migrated.Title)
	assert.Equal(t, series.LegacyDescription, migrated.Description)
	assert.Equal(t, 2, migrated.EpisodeCount)
	assert.NotEmpty(t, migrated.ID)
	assert.False(t, migrated.CreatedAt.IsZero())
	require.Len(t, migrated.Episodes, 2)
	assert.Equal(t, "Pilot", migrated.Episodes[0].Title)
	assert.Equal(t, series.MediaVideo, migrated.Episodes[0].Media[0].Type)
	assert.Equal(t, 1, backend.Writes())

	// The persisted form is the new shape
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(backend.Bytes(), &raw))
	assert.Contains(t, raw, "series")
	assert.NotContains(t, raw, "showTitle")

	second, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, second.Series, 1)
	assert.Equal(t, migrated.ID, second.Series[0].ID)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, 1, backend.Writes())
}

/*
TestDocumentStore_LegacyDefaults fills in a missing count and episodes, keeps
an explicit zero count, and pads episodes only up to the count.
*/
func TestDocumentStore_LegacyDefaults(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantTitle []string
	}{
		{"title_only", `{"showTitle": "Y"}`, 1, []string{"Episode 1"}},
		{"count_without_episodes", `{"showTitle": "Y", "episodeCount": 3}`, 3, []string{"Episode 1", "Episode 2", "Episode 3"}},
		{"explicit_zero_count", `{"showTitle": "Y", "episodeCount": 0, "episodes": []}`, 0, []string{}},
		{"null_count", `{"showTitle": "Y", "episodeCount": null}`, 1, []string{"Episode 1"}},
		{"more_episodes_than_count", `{"showTitle": "Y", "episodeCount": 1, "episodes": [{"title": "A"}, {"title": "B"}]}`, 2, []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := newStore(series.NewMemoryBackend([]byte(tt.data))).Load(context.Background())
			require.NoError(t, err)
			require.Len(t, doc.Series, 1)
			assert.Equal(t, tt.wantCount, doc.Series[0].EpisodeCount)
			assert.Equal(t, tt.wantTitle, episodeTitles(doc.Series[0]))
		})
	}
}

/*
TestDocumentStore_LegacySaveFailure still returns the migrated document.
*/
func TestDocumentStore_LegacySaveFailure(t *testing.T) {
	backend := series.NewMemoryBackend([]byte(legacyDocument))
	backend.WriteErr = errors.New("read-only")

	doc, err := newStore(backend).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Series, 1)
	assert.Equal(t, "X", doc.Series[0].Title)
}

/*
TestDocumentStore_SaveRoundTrip normalises nil slices before writing.
*/
func TestDocumentStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := series.NewMemoryBackend(nil)
	store := newStore(backend)

	doc := &series.Document{Series: []*series.Series{{ID: "a", Title: "A", EpisodeCount: 1, Episodes: []series.Episode{{Title: "Episode 1"}}}}}
	require.NoError(t, store.Save(ctx, doc))

	assert.Contains(t, string(backend.Bytes()), `"media": []`)
	assert.Contains(t, string(backend.Bytes()), `"episodeCount": 1`)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", loaded.Series[0].Title)
}

/*
TestFileBackend writes atomically and quarantines unparsable documents.
*/
func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "series.json")

	backend, err := series.NewFileBackend(path)
	require.NoError(t, err)
	require.NoError(t, backend.Ping(ctx))

	_, err = backend.Read(ctx)
	assert.ErrorIs(t, err, series.ErrDocumentNotExist)

	require.NoError(t, backend.Write(ctx, []byte(`{"series": []}`)))
	data, err := backend.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"series": []}`, string(data))

	// Corrupt bytes are copied aside before the empty document is served
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	doc, err := newStore(backend).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Series)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)

	var quarantined []string
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), "temp file left behind: %s", entry.Name())
		if strings.HasPrefix(entry.Name(), "series.json.corrupt-") {
			quarantined = append(quarantined, entry.Name())
		}
	}
	require.Len(t, quarantined, 1)

	saved, err := os.ReadFile(filepath.Join(filepath.Dir(path), quarantined[0]))
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(saved))
}
