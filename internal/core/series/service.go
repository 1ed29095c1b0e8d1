// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/taibuivan/reel/internal/platform/apperr"
	"github.com/taibuivan/reel/internal/platform/ctxutil"
	"github.com/taibuivan/reel/internal/platform/metrics"
	"github.com/taibuivan/reel/internal/platform/storage"
	"github.com/taibuivan/reel/internal/platform/validate"
	"github.com/taibuivan/reel/pkg/slice"
)

// # Limits

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// # Service Layer

/*
Service is the entry point for every document operation.

Each call loads the document, applies one intent through the [Repository] and
saves the result. Calls are serialised inside the process by a mutex, so two
requests never interleave their load-mutate-save sequences. Nothing is saved
when the intent fails.
*/
type Service struct {
	mu        sync.Mutex
	store     *DocumentStore
	repo      *Repository
	lifecycle *Lifecycle
	assets    storage.AssetStore
	logger    *slog.Logger
}

// NewService wires the store, repository and lifecycle coordinator together.
func NewService(store *DocumentStore, assets storage.AssetStore, registry *metrics.Registry, logger *slog.Logger) *Service {
	lifecycle := NewLifecycle(assets, registry, logger)
	return &Service{
		store:     store,
		repo:      NewRepository(lifecycle, logger),
		lifecycle: lifecycle,
		assets:    assets,
		logger:    logger,
	}
}

// view runs fn against a freshly loaded document without saving.
func (service *Service) view(ctx context.Context, fn func(doc *Document) error) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	doc, err := service.store.Load(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}

// mutate runs fn against a freshly loaded document and saves it on success.
func (service *Service) mutate(ctx context.Context, fn func(doc *Document) error) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	doc, err := service.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return service.store.Save(ctx, doc)
}

func (service *Service) log(ctx context.Context) *slog.Logger {
	return ctxutil.LoggerOr(ctx, service.logger)
}

// Ping checks the document backend.
func (service *Service) Ping(ctx context.Context) error {
	return service.store.Backend().Ping(ctx)
}

// # Series

// ListSeries returns every series in insertion order.
func (service *Service) ListSeries(ctx context.Context) ([]*Series, error) {
	var list []*Series
	err := service.view(ctx, func(doc *Document) error {
		list = service.repo.ListSeries(doc)
		return nil
	})
	return list, err
}

// GetSeries returns one series.
func (service *Service) GetSeries(ctx context.Context, id string) (*Series, error) {
	var series *Series
	err := service.view(ctx, func(doc *Document) (err error) {
		series, err = service.repo.GetSeries(doc, id)
		return err
	})
	return series, err
}

/*
CreateSeries validates and appends a new series.

Parameters:
  - ctx: context.Context
  - input: CreateInput (every field optional)

Returns:
  - *Series: The persisted series with its episodes materialised
  - error: Validation or backend errors
*/
func (service *Service) CreateSeries(ctx context.Context, input CreateInput) (*Series, error) {
	var v validate.Validator
	if input.Title != nil {
		v.MaxLen("title", *input.Title, maxTitleLength)
	}
	if input.Description != nil {
		v.MaxLen("description", *input.Description, maxDescriptionLength)
	}
	if input.EpisodeCount != nil {
		v.Range("episodeCount", *input.EpisodeCount, 0, MaxEpisodeCount)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var series *Series
	err := service.mutate(ctx, func(doc *Document) error {
		series = service.repo.CreateSeries(doc, input)
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.log(ctx).InfoContext(ctx, "series_created",
		slog.String("series_id", series.ID),
		slog.Int("episode_count", series.EpisodeCount),
	)
	return series, nil
}

// UpdateSeries validates and applies a partial update.
func (service *Service) UpdateSeries(ctx context.Context, id string, patch Patch) (*Series, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var series *Series
	err := service.mutate(ctx, func(doc *Document) (err error) {
		series, err = service.repo.UpdateSeries(ctx, doc, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.log(ctx).InfoContext(ctx, "series_updated",
		slog.String("series_id", series.ID),
		slog.Int("episode_count", series.EpisodeCount),
	)
	return series, nil
}

func validatePatch(patch Patch) error {
	var v validate.Validator
	if patch.Title != nil {
		v.MaxLen("title", *patch.Title, maxTitleLength)
	}
	if patch.Description != nil {
		v.MaxLen("description", *patch.Description, maxDescriptionLength)
	}
	if patch.EpisodeCount != nil {
		v.Range("episodeCount", *patch.EpisodeCount, 0, MaxEpisodeCount)
	}
	if patch.Episodes != nil {
		v.Custom("episodes", len(*patch.Episodes) > MaxEpisodeCount, "Too many episodes")
		for _, episode := range *patch.Episodes {
			invalid := slices.ContainsFunc(episode.Media, func(item MediaItem) bool {
				return item.ID == "" || !item.Type.IsValid()
			})
			if invalid {
				v.Custom("episodes", true, "Every media item needs an id and a type of image or video")
				break
			}
		}
	}
	return v.Err()
}

// DeleteSeries removes a series after attempting to delete every asset it owns.
func (service *Service) DeleteSeries(ctx context.Context, id string) error {
	var failed int
	err := service.mutate(ctx, func(doc *Document) (err error) {
		failed, err = service.repo.DeleteSeries(ctx, doc, id)
		return err
	})
	if err != nil {
		return err
	}

	service.log(ctx).InfoContext(ctx, "series_deleted",
		slog.String("series_id", id),
		slog.Int("asset_delete_failures", failed),
	)
	return nil
}

// # Episode Assets

// SetSeriesThumbnail attaches ref as the series thumbnail.
func (service *Service) SetSeriesThumbnail(ctx context.Context, id, ref string) (*Series, error) {
	var series *Series
	err := service.mutate(ctx, func(doc *Document) (err error) {
		series, err = service.repo.SetSeriesThumbnail(ctx, doc, id, ref)
		return err
	})
	return series, err
}

// SetEpisodeThumbnail attaches ref as the thumbnail of episode index.
func (service *Service) SetEpisodeThumbnail(ctx context.Context, id string, index int, ref string) (*Episode, error) {
	var episode *Episode
	err := service.mutate(ctx, func(doc *Document) (err error) {
		episode, err = service.repo.SetEpisodeThumbnail(ctx, doc, id, index, ref)
		return err
	})
	return episode, err
}

// SetEpisodeMusic attaches ref as the music track of episode index.
func (service *Service) SetEpisodeMusic(ctx context.Context, id string, index int, ref, originalName string) (*Episode, error) {
	var episode *Episode
	err := service.mutate(ctx, func(doc *Document) (err error) {
		episode, err = service.repo.SetEpisodeMusic(ctx, doc, id, index, ref, originalName)
		return err
	})
	return episode, err
}

// DeleteEpisodeMusic removes the music track of episode index.
func (service *Service) DeleteEpisodeMusic(ctx context.Context, id string, index int) (*Episode, error) {
	var episode *Episode
	err := service.mutate(ctx, func(doc *Document) (err error) {
		episode, err = service.repo.DeleteEpisodeMusic(ctx, doc, id, index)
		return err
	})
	return episode, err
}

// # Media

// AddMedia appends uploaded items to episode index.
func (service *Service) AddMedia(ctx context.Context, id string, index int, inputs []MediaInput) ([]MediaItem, error) {
	var added []MediaItem
	err := service.mutate(ctx, func(doc *Document) (err error) {
		added, err = service.repo.AddMedia(doc, id, index, inputs)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.log(ctx).InfoContext(ctx, "media_added",
		slog.String("series_id", id),
		slog.Int("episode_index", index),
		slog.Int("count", len(added)),
	)
	return added, nil
}

// DeleteMedia removes one media item and its asset.
func (service *Service) DeleteMedia(ctx context.Context, id string, index int, mediaID string) error {
	return service.mutate(ctx, func(doc *Document) error {
		return service.repo.DeleteMedia(ctx, doc, id, index, mediaID)
	})
}

// ReorderMedia reorders the media of episode index.
func (service *Service) ReorderMedia(ctx context.Context, id string, index int, orderedIDs []string) ([]MediaItem, error) {
	var media []MediaItem
	err := service.mutate(ctx, func(doc *Document) (err error) {
		media, err = service.repo.ReorderMedia(doc, id, index, orderedIDs)
		return err
	})
	return media, err
}

// # Legacy Single-Show

// LegacyPatch is the update body accepted by the single-show API.
type LegacyPatch struct {
	ShowTitle    *string    `json:"showTitle"`
	EpisodeCount *int       `json:"episodeCount"`
	Episodes     *[]Episode `json:"episodes"`
}

// PrimarySeriesID returns the id of the series the legacy API acts on.
func (service *Service) PrimarySeriesID(ctx context.Context) (string, error) {
	var id string
	err := service.view(ctx, func(doc *Document) error {
		primary := doc.Primary()
		if primary == nil {
			return apperr.NotFound("Series")
		}
		id = primary.ID
		return nil
	})
	return id, err
}

// Legacy returns the first series in the legacy shape.
func (service *Service) Legacy(ctx context.Context) (LegacyShow, error) {
	var show LegacyShow
	err := service.view(ctx, func(doc *Document) error {
		primary := doc.Primary()
		if primary == nil {
			return apperr.NotFound("Series")
		}
		show = LegacyView(primary)
		return nil
	})
	return show, err
}

// UpdateLegacy applies a legacy update to the first series.
func (service *Service) UpdateLegacy(ctx context.Context, legacy LegacyPatch) (LegacyShow, error) {
	patch := Patch{Title: legacy.ShowTitle, EpisodeCount: legacy.EpisodeCount, Episodes: legacy.Episodes}
	if err := validatePatch(patch); err != nil {
		return LegacyShow{}, err
	}

	var show LegacyShow
	err := service.mutate(ctx, func(doc *Document) error {
		primary := doc.Primary()
		if primary == nil {
			return apperr.NotFound("Series")
		}
		series, err := service.repo.UpdateSeries(ctx, doc, primary.ID, patch)
		if err != nil {
			return err
		}
		show = LegacyView(series)
		return nil
	})
	return show, err
}

// # Asset Housekeeping

// Discard releases freshly uploaded references that never reached the document.
func (service *Service) Discard(ctx context.Context, refs ...string) {
	if failed := service.lifecycle.ReleaseAll(ctx, refs); failed > 0 {
		service.log(ctx).WarnContext(ctx, "upload_discard_incomplete",
			slog.Int("discarded", len(refs)-failed),
			slog.Int("failed", failed),
		)
	}
}

// ReferencedKeys returns the sorted storage keys reachable from the document.
// References the asset store does not recognise are left out.
func (service *Service) ReferencedKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := service.view(ctx, func(doc *Document) error {
		keys = service.referencedKeys(doc)
		return nil
	})
	return keys, err
}

func (service *Service) referencedKeys(doc *Document) []string {
	keys, _ := service.classifyReferences(doc)
	return keys
}

// classifyReferences splits the document's references into recognised storage
// keys (sorted, unique) and the references the asset store could not map.
func (service *Service) classifyReferences(doc *Document) (keys []string, unrecognised []string) {
	seen := make(map[string]struct{})
	for _, ref := range doc.AssetReferences() {
		if key, ok := service.assets.KeyFromReference(ref); ok {
			seen[key] = struct{}{}
			continue
		}
		unrecognised = append(unrecognised, ref)
	}

	keys = make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, unrecognised
}

// protectedKeys is every stored key that may still be referenced. An
// unrecognised reference (a legacy path, or one written under an earlier
// ASSET_URL_PREFIX) protects any key equal to its base name.
func (service *Service) protectedKeys(ctx context.Context, doc *Document) []string {
	keys, unrecognised := service.classifyReferences(doc)
	if len(unrecognised) == 0 {
		return keys
	}

	service.log(ctx).WarnContext(ctx, "orphans_unrecognised_references",
		slog.Int("count", len(unrecognised)),
		slog.String("example", unrecognised[0]),
	)
	for _, ref := range unrecognised {
		if base := referenceBase(ref); base != "" {
			keys = append(keys, base)
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// referenceBase returns the last path segment of ref without query or fragment.
func referenceBase(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimRight(strings.TrimSpace(ref), "/")
	if ref == "" {
		return ""
	}
	base := path.Base(ref)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

/*
Orphans lists stored keys that the document no longer references.

Description: Truncating episodes leaves their assets in storage; this is how
they are found again. An upload still in flight in another process shows up
here until its document update lands. Keys matching the base name of a
reference the store does not recognise are never reported.
*/
func (service *Service) Orphans(ctx context.Context) ([]string, error) {
	var orphans []string
	err := service.view(ctx, func(doc *Document) error {
		stored, err := service.assets.List(ctx)
		if err != nil {
			return err
		}

		protected := service.protectedKeys(ctx, doc)
		orphans = slice.Filter(stored, func(key string) bool {
			_, found := slices.BinarySearch(protected, key)
			return !found
		})
		return nil
	})
	return orphans, err
}

// PurgeOrphans deletes every orphaned key and reports how many deletions failed.
func (service *Service) PurgeOrphans(ctx context.Context) (orphans []string, failed int, err error) {
	orphans, err = service.Orphans(ctx)
	if err != nil {
		return nil, 0, err
	}

	failed = service.lifecycle.ReleaseAll(ctx, orphans)
	service.log(ctx).InfoContext(ctx, "orphans_purged",
		slog.Int("found", len(orphans)),
		slog.Int("failed", failed),
	)
	return orphans, failed, nil
}

// Migrate forces a load, which upgrades and saves a legacy document.
func (service *Service) Migrate(ctx context.Context) (*Document, error) {
	var migrated *Document
	err := service.view(ctx, func(doc *Document) error {
		migrated = doc
		return nil
	})
	return migrated, err
}
