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
	"github.com/taibuivan/reel/internal/platform/apperr"
	"github.com/taibuivan/reel/pkg/pointer"
)

/*
TestService_Scenario_CreateShrinkDelete follows one series through its life.
*/
func TestService_Scenario_CreateShrinkDelete(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t, series.NewMemoryBackend(nil))

	created, err := service.CreateSeries(ctx, series.CreateInput{Title: pointer.To("Trip"), EpisodeCount: pointer.To(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Episode 1", "Episode 2"}, episodeTitles(created))

	updated, err := service.UpdateSeries(ctx, created.ID, series.Patch{EpisodeCount: pointer.To(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Episode 1"}, episodeTitles(updated))

	// The change was persisted, not just returned
	fetched, err := service.GetSeries(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.EpisodeCount)

	require.NoError(t, service.DeleteSeries(ctx, created.ID))

	list, err := service.ListSeries(ctx)
	require.NoError(t, err)
	for _, s := range list {
		assert.NotEqual(t, created.ID, s.ID)
	}
}

/*
TestService_Scenario_AddMedia types items by extension in input order.
*/
func TestService_Scenario_AddMedia(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t, series.NewMemoryBackend(nil))

	created, err := service.CreateSeries(ctx, series.CreateInput{})
	require.NoError(t, err)

	_, err = service.AddMedia(ctx, created.ID, 0, []series.MediaInput{
		{OriginalName: "clip.mp4", Key: "k1"},
		{OriginalName: "pic.png", Key: "k2"},
	})
	require.NoError(t, err)

	fetched, err := service.GetSeries(ctx, created.ID)
	require.NoError(t, err)
	media := fetched.Episodes[0].Media
	require.Len(t, media, 2)
	assert.Equal(t, series.MediaVideo, media[0].Type)
	assert.Equal(t, series.MediaImage, media[1].Type)
}

/*
TestService_FailedIntentIsNotSaved leaves the stored document untouched.
*/
func TestService_FailedIntentIsNotSaved(t *testing.T) {
	ctx := context.Background()
	backend := series.NewMemoryBackend(nil)
	service, _ := newService(t, backend)

	created, err := service.CreateSeries(ctx, series.CreateInput{})
	require.NoError(t, err)
	writes := backend.Writes()

	_, err = service.SetEpisodeThumbnail(ctx, created.ID, 5, "/uploads/x.png")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidIndex))

	err = service.DeleteMedia(ctx, "missing", 0, "m")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	assert.Equal(t, writes, backend.Writes())
}

/*
TestService_Validation rejects out-of-range input before loading.
*/
func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	backend := series.NewMemoryBackend(nil)
	service, _ := newService(t, backend)

	_, err := service.CreateSeries(ctx, series.CreateInput{EpisodeCount: pointer.To(-1)})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.CreateSeries(ctx, series.CreateInput{EpisodeCount: pointer.To(series.MaxEpisodeCount + 1)})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.UpdateSeries(ctx, "any", series.Patch{Episodes: &[]series.Episode{{
		Title: "A",
		Media: []series.MediaItem{{ID: "m1", Type: "audio"}},
	}}})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	assert.Equal(t, 0, backend.Writes())
}

/*
TestService_SaveFailurePropagates surfaces backend write errors.
*/
func TestService_SaveFailurePropagates(t *testing.T) {
	backend := series.NewMemoryBackend(nil)
	backend.WriteErr = errors.New("disk full")
	service, _ := newService(t, backend)

	_, err := service.CreateSeries(context.Background(), series.CreateInput{})
	assert.ErrorIs(t, err, backend.WriteErr)
}

/*
TestService_Legacy maps the single-show API onto the first series.
*/
func TestService_Legacy(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t, series.NewMemoryBackend(nil))

	_, err := service.Legacy(ctx)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	_, err = service.PrimarySeriesID(ctx)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	first, err := service.CreateSeries(ctx, series.CreateInput{Title: pointer.To("First")})
	require.NoError(t, err)
	_, err = service.CreateSeries(ctx, series.CreateInput{Title: pointer.To("Second")})
	require.NoError(t, err)

	id, err := service.PrimarySeriesID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, id)

	show, err := service.UpdateLegacy(ctx, series.LegacyPatch{ShowTitle: pointer.To("Renamed"), EpisodeCount: pointer.To(3)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", show.ShowTitle)
	assert.Equal(t, 3, show.EpisodeCount)
	assert.Len(t, show.Episodes, 3)

	fetched, err := service.GetSeries(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fetched.Title)
}

/*
TestService_Orphans finds and purges keys no longer referenced, including
the assets of truncated episodes.
*/
func TestService_Orphans(t *testing.T) {
	ctx := context.Background()
	service, assets := newService(t, series.NewMemoryBackend(nil))
	assets.seed("live.png", "truncated.png", "stray.mp4")

	created, err := service.CreateSeries(ctx, series.CreateInput{EpisodeCount: pointer.To(2)})
	require.NoError(t, err)
	_, err = service.SetEpisodeThumbnail(ctx, created.ID, 0, "/uploads/live.png")
	require.NoError(t, err)
	_, err = service.SetEpisodeThumbnail(ctx, created.ID, 1, "/uploads/truncated.png")
	require.NoError(t, err)

	_, err = service.UpdateSeries(ctx, created.ID, series.Patch{EpisodeCount: pointer.To(1)})
	require.NoError(t, err)

	// Truncation does not delete
	assert.True(t, assets.has("truncated.png"))

	keys, err := service.ReferencedKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"live.png"}, keys)

	orphans, err := service.Orphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"stray.mp4", "truncated.png"}, orphans)

	purged, failed, err := service.PurgeOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, orphans, purged)
	assert.Zero(t, failed)
	assert.True(t, assets.has("live.png"))
	assert.False(t, assets.has("stray.mp4"))
	assert.False(t, assets.has("truncated.png"))
}

/*
TestService_Orphans_KeepsUnrecognisedReferences never purges a stored key
that a reference outside the current URL prefix may still point at.
*/
func TestService_Orphans_KeepsUnrecognisedReferences(t *testing.T) {
	ctx := context.Background()
	service, assets := newService(t, series.NewMemoryBackend(nil))
	assets.seed("live.png", "clip.mp4", "stray.mp4")

	created, err := service.CreateSeries(ctx, series.CreateInput{EpisodeCount: pointer.To(1)})
	require.NoError(t, err)
	_, err = service.SetSeriesThumbnail(ctx, created.ID, "/media/live.png")
	require.NoError(t, err)
	_, err = service.SetEpisodeThumbnail(ctx, created.ID, 0, "https://cdn.example.com/old/clip.mp4?v=2")
	require.NoError(t, err)

	keys, err := service.ReferencedKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	orphans, err := service.Orphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"stray.mp4"}, orphans)

	purged, failed, err := service.PurgeOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"stray.mp4"}, purged)
	assert.Zero(t, failed)
	assert.True(t, assets.has("live.png"))
	assert.True(t, assets.has("clip.mp4"))
	assert.False(t, assets.has("stray.mp4"))

	fetched, err := service.GetSeries(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "/media/live.png", *fetched.Thumbnail)
}

/*
TestService_Discard releases uploads that the document never referenced.
*/
func TestService_Discard(t *testing.T) {
	service, assets := newService(t, series.NewMemoryBackend(nil))
	assets.seed("fresh.png", "fresh.mp4")

	service.Discard(context.Background(), "/uploads/fresh.png", "/uploads/fresh.mp4")
	assert.False(t, assets.has("fresh.png"))
	assert.False(t, assets.has("fresh.mp4"))
}

/*
TestService_Migrate upgrades a legacy document on demand.
*/
func TestService_Migrate(t *testing.T) {
	backend := series.NewMemoryBackend([]byte(legacyDocument))
	service, _ := newService(t, backend)

	doc, err := service.Migrate(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Series, 1)
	assert.Equal(t, "X", doc.Series[0].Title)
	assert.Equal(t, 1, backend.Writes())
}
