// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/reel/internal/platform/apperr"
	"github.com/taibuivan/reel/internal/platform/ctxutil"
	"github.com/taibuivan/reel/pkg/pointer"
	"github.com/taibuivan/reel/pkg/slice"
	"github.com/taibuivan/reel/pkg/uuid"
)

// # Defaults

const (
	// DefaultTitle names a series created without a title.
	DefaultTitle = "Untitled Series"

	// DefaultEpisodeCount is used when a series is created without a count.
	DefaultEpisodeCount = 1

	// MaxEpisodeCount bounds how many empty episodes one request may materialise.
	MaxEpisodeCount = 1000
)

// # Inputs

// CreateInput carries the optional fields of a new series.
type CreateInput struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	EpisodeCount *int    `json:"episodeCount"`
}

// Patch is a partial update. Nil fields are left unchanged; a non-nil
// Episodes replaces the whole array (an empty array included).
type Patch struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	EpisodeCount *int       `json:"episodeCount"`
	Episodes     *[]Episode `json:"episodes"`
}

// MediaInput describes one stored upload to attach to an episode.
type MediaInput struct {
	OriginalName string
	Key          string
	URL          string
}

// # Repository

// Repository applies intents to a working [Document] in place. It never
// loads or saves; the caller owns the document's lifetime and persists it
// after a successful call. Asset removal goes through the [Lifecycle].
type Repository struct {
	lifecycle *Lifecycle
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewRepository constructs a repository around a lifecycle coordinator.
func NewRepository(lifecycle *Lifecycle, logger *slog.Logger) *Repository {
	return &Repository{
		lifecycle: lifecycle,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}
}

// ListSeries returns the series in insertion order.
func (repository *Repository) ListSeries(doc *Document) []*Series {
	return doc.Series
}

// GetSeries returns the series with id or NOT_FOUND.
func (repository *Repository) GetSeries(doc *Document, id string) (*Series, error) {
	if _, series := doc.find(id); series != nil {
		return series, nil
	}
	return nil, apperr.NotFound("Series")
}

// CreateSeries appends a new series with EpisodeCount empty episodes.
func (repository *Repository) CreateSeries(doc *Document, input CreateInput) *Series {
	series := &Series{
		ID:           repository.newID(),
		Title:        pointer.Fallback(input.Title, DefaultTitle),
		Description:  pointer.Fallback(input.Description, ""),
		CreatedAt:    repository.now(),
		EpisodeCount: clampCount(pointer.Fallback(input.EpisodeCount, DefaultEpisodeCount)),
	}

	series.Episodes = make([]Episode, 0, series.EpisodeCount)
	for n := 1; n <= series.EpisodeCount; n++ {
		series.Episodes = append(series.Episodes, NewEpisode(n))
	}

	doc.Series = append(doc.Series, series)
	return series
}

/*
UpdateSeries applies a partial update.

Description: Title and description replace when present. A supplied episodes
array replaces the current one wholesale. Afterwards, a supplied episodeCount
reconciles the (possibly replaced) array: growing appends "Episode {n}" entries
after its end, shrinking truncates from the end. Without an episodeCount, the
count follows the length of a replaced array.

Truncated episodes' assets are NOT deleted from storage; this is logged.
*/
func (repository *Repository) UpdateSeries(ctx context.Context, doc *Document, id string, patch Patch) (*Series, error) {
	series, err := repository.GetSeries(doc, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		series.Title = *patch.Title
	}
	if patch.Description != nil {
		series.Description = *patch.Description
	}

	if patch.Episodes != nil {
		previous := series.AssetReferences()
		series.Episodes = append([]Episode{}, (*patch.Episodes)...)
		series.normalize()
		series.EpisodeCount = len(series.Episodes)
		repository.logDropped(ctx, series, previous)
	}

	if patch.EpisodeCount != nil {
		repository.reconcile(ctx, series, *patch.EpisodeCount)
	}

	return series, nil
}

// logDropped warns about references present before an episodes replacement
// and absent after it. Their assets stay in storage.
func (repository *Repository) logDropped(ctx context.Context, series *Series, previous []string) {
	kept := make(map[string]struct{})
	for _, ref := range series.AssetReferences() {
		kept[ref] = struct{}{}
	}

	var orphaned int
	for _, ref := range previous {
		if _, ok := kept[ref]; !ok {
			orphaned++
		}
	}
	if orphaned > 0 {
		ctxutil.LoggerOr(ctx, repository.logger).WarnContext(ctx, "episodes_replaced_assets_orphaned",
			slog.String("series_id", series.ID),
			slog.Int("episodes", len(series.Episodes)),
			slog.Int("orphaned_assets", orphaned),
		)
	}
}

// clampCount bounds an episode count to [0, MaxEpisodeCount].
func clampCount(count int) int {
	return min(max(count, 0), MaxEpisodeCount)
}

// reconcile grows or truncates series.Episodes to exactly count entries.
// Out-of-range counts are clamped.
func (repository *Repository) reconcile(ctx context.Context, series *Series, count int) {
	count = clampCount(count)
	current := len(series.Episodes)

	switch {
	case count > current:
		for n := current + 1; n <= count; n++ {
			series.Episodes = append(series.Episodes, NewEpisode(n))
		}
	case count < current:
		var orphaned int
		for i := count; i < current; i++ {
			orphaned += len(series.Episodes[i].AssetReferences())
		}
		if orphaned > 0 {
			ctxutil.LoggerOr(ctx, repository.logger).WarnContext(ctx, "episodes_truncated_assets_orphaned",
				slog.String("series_id", series.ID),
				slog.Int("from", current),
				slog.Int("to", count),
				slog.Int("orphaned_assets", orphaned),
			)
		}
		series.Episodes = series.Episodes[:count:count]
	}

	series.EpisodeCount = count
}

// DeleteSeries releases every asset reachable from the series and removes it.
// It returns the number of asset deletions that did not succeed; the series
// is removed regardless.
func (repository *Repository) DeleteSeries(ctx context.Context, doc *Document, id string) (int, error) {
	index, series := doc.find(id)
	if series == nil {
		return 0, apperr.NotFound("Series")
	}

	failed := repository.lifecycle.ReleaseAll(ctx, series.AssetReferences())

	doc.Series = append(doc.Series[:index], doc.Series[index+1:]...)
	return failed, nil
}

// # Episode Assets

// episode returns the addressable episode at index or INVALID_INDEX.
func (repository *Repository) episode(doc *Document, id string, index int) (*Series, *Episode, error) {
	series, err := repository.GetSeries(doc, id)
	if err != nil {
		return nil, nil, err
	}
	if index < 0 || index >= len(series.Episodes) {
		return nil, nil, apperr.InvalidIndex(index, len(series.Episodes))
	}
	return series, &series.Episodes[index], nil
}

// Episode returns the episode at index, validating both id and index.
func (repository *Repository) Episode(doc *Document, id string, index int) (*Episode, error) {
	_, episode, err := repository.episode(doc, id, index)
	return episode, err
}

// SetSeriesThumbnail replaces the series thumbnail, releasing the old one.
func (repository *Repository) SetSeriesThumbnail(ctx context.Context, doc *Document, id, ref string) (*Series, error) {
	series, err := repository.GetSeries(doc, id)
	if err != nil {
		return nil, err
	}
	repository.lifecycle.Replace(ctx, &series.Thumbnail, ref)
	return series, nil
}

// SetEpisodeThumbnail replaces one episode's thumbnail, releasing the old one.
func (repository *Repository) SetEpisodeThumbnail(ctx context.Context, doc *Document, id string, index int, ref string) (*Episode, error) {
	_, episode, err := repository.episode(doc, id, index)
	if err != nil {
		return nil, err
	}
	repository.lifecycle.Replace(ctx, &episode.Thumbnail, ref)
	return episode, nil
}

// SetEpisodeMusic replaces one episode's music track and records its original name.
func (repository *Repository) SetEpisodeMusic(ctx context.Context, doc *Document, id string, index int, ref, originalName string) (*Episode, error) {
	_, episode, err := repository.episode(doc, id, index)
	if err != nil {
		return nil, err
	}
	repository.lifecycle.Replace(ctx, &episode.Music, ref)
	episode.MusicOriginalName = &originalName
	return episode, nil
}

// DeleteEpisodeMusic clears the music track. Absent music is a successful no-op.
func (repository *Repository) DeleteEpisodeMusic(ctx context.Context, doc *Document, id string, index int) (*Episode, error) {
	_, episode, err := repository.episode(doc, id, index)
	if err != nil {
		return nil, err
	}
	if episode.Music == nil {
		episode.MusicOriginalName = nil
		return episode, nil
	}
	repository.lifecycle.Clear(ctx, &episode.Music)
	episode.MusicOriginalName = nil
	return episode, nil
}

// # Media

// AddMedia appends one item per input, in input order, with fresh ids and a
// type classified from the original name. Existing media is untouched.
func (repository *Repository) AddMedia(doc *Document, id string, index int, inputs []MediaInput) ([]MediaItem, error) {
	_, episode, err := repository.episode(doc, id, index)
	if err != nil {
		return nil, err
	}

	added := slice.Map(inputs, func(input MediaInput) MediaItem {
		return MediaItem{
			ID:           repository.newID(),
			Filename:     input.Key,
			OriginalName: input.OriginalName,
			Type:         ClassifyMedia(input.OriginalName),
			URL:          input.URL,
		}
	})

	episode.Media = append(episode.Media, added...)
	return added, nil
}

// DeleteMedia releases and removes exactly one media item.
func (repository *Repository) DeleteMedia(ctx context.Context, doc *Document, id string, index int, mediaID string) error {
	_, episode, err := repository.episode(doc, id, index)
	if err != nil {
		return err
	}

	for i, item := range episode.Media {
		if item.ID != mediaID {
			continue
		}
		repository.lifecycle.Release(ctx, item.Reference())
		episode.Media = append(episode.Media[:i], episode.Media[i+1:]...)
		return nil
	}

	return apperr.NotFound("Media item")
}

/*
ReorderMedia rebuilds an episode's media order.

Description: Items named in orderedIDs come first, in that order. Unknown and
repeated ids are skipped. Items not named are appended in their original
relative order, so the result always holds exactly the items that were there.
No asset is touched.

Returns:
  - []MediaItem: The episode's new media order
*/
func (repository *Repository) ReorderMedia(doc *Document, id string, index int, orderedIDs []string) ([]MediaItem, error) {
	_, episode, err := repository.episode(doc, id, index)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(episode.Media))
	for i, item := range episode.Media {
		byID[item.ID] = i
	}

	placed := make([]bool, len(episode.Media))
	reordered := make([]MediaItem, 0, len(episode.Media))

	for _, mediaID := range orderedIDs {
		position, found := byID[mediaID]
		if !found || placed[position] {
			continue
		}
		placed[position] = true
		reordered = append(reordered, episode.Media[position])
	}

	for i, item := range episode.Media {
		if !placed[i] {
			reordered = append(reordered, item)
		}
	}

	episode.Media = reordered
	return reordered, nil
}
