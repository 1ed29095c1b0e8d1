// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/reel/internal/platform/metrics"
	"github.com/taibuivan/reel/pkg/pointer"
	"github.com/taibuivan/reel/pkg/uuid"
)

// LegacyDescription is given to the series synthesised from a legacy document.
const LegacyDescription = "A personal documentary"

// ErrDocumentNotExist is returned by a [Backend] that holds no document yet.
var ErrDocumentNotExist = errors.New("series: document does not exist")

// # Backends

// Backend persists the raw bytes of the single document.
type Backend interface {
	// Name identifies the backend in logs and readiness output.
	Name() string

	// Read returns the stored bytes or [ErrDocumentNotExist].
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored bytes. Readers never observe a partial write.
	Write(ctx context.Context, data []byte) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// Quarantiner is implemented by backends that can set aside bytes that failed
// to parse, so the next save does not silently destroy them.
type Quarantiner interface {
	Quarantine(ctx context.Context, data []byte) (string, error)
}

// # Document Store

// DocumentStore loads and saves the [Document] through a [Backend] and owns
// the upgrade from the legacy single-show shape.
type DocumentStore struct {
	backend Backend
	metrics *metrics.Registry
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewDocumentStore constructs a store. registry may be nil.
func NewDocumentStore(backend Backend, registry *metrics.Registry, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{
		backend: backend,
		metrics: registry,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.New,
	}
}

// Backend exposes the underlying backend for readiness checks.
func (store *DocumentStore) Backend() Backend {
	return store.backend
}

/*
Load reads the document.

Description: A missing document, or bytes that cannot be parsed, yield an empty
document; unparsable bytes are quarantined first when the backend supports it.
A legacy document (showTitle without series) is migrated and saved before it is
returned. Only backend I/O failures are returned as errors.

Returns:
  - *Document: The normalised document, Series never nil
  - error: Backend read failures
*/
func (store *DocumentStore) Load(ctx context.Context) (*Document, error) {
	data, err := store.backend.Read(ctx)
	if errors.Is(err, ErrDocumentNotExist) {
		store.metrics.DocumentOperation("load", metrics.ResultOK)
		return &Document{Series: []*Series{}}, nil
	}
	if err != nil {
		store.metrics.DocumentOperation("load", metrics.ResultError)
		return nil, fmt.Errorf("series: read %s document: %w", store.backend.Name(), err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return store.unparsable(ctx, data, err), nil
	}

	_, hasSeries := probe["series"]
	_, hasShowTitle := probe["showTitle"]

	if !hasSeries && hasShowTitle {
		var legacy legacyDocument
		if err := json.Unmarshal(data, &legacy); err != nil {
			return store.unparsable(ctx, data, err), nil
		}
		return store.migrate(ctx, legacy), nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return store.unparsable(ctx, data, err), nil
	}

	doc.normalize()
	store.metrics.DocumentOperation("load", metrics.ResultOK)
	return &doc, nil
}

// unparsable quarantines data when possible and returns an empty document.
func (store *DocumentStore) unparsable(ctx context.Context, data []byte, cause error) *Document {
	logger := store.logger.With(slog.String("backend", store.backend.Name()))

	attrs := []any{slog.Any("error", cause), slog.Int("bytes", len(data))}
	if quarantiner, ok := store.backend.(Quarantiner); ok {
		location, err := quarantiner.Quarantine(ctx, data)
		if err != nil {
			logger.ErrorContext(ctx, "document_quarantine_failed", slog.Any("error", err))
		} else {
			attrs = append(attrs, slog.String("quarantined_to", location))
		}
	}

	logger.WarnContext(ctx, "document_unparsable", attrs...)
	store.metrics.DocumentOperation("load", metrics.ResultSkipped)
	return &Document{Series: []*Series{}}
}

// legacyDocument is the persisted single-show shape. EpisodeCount is a pointer
// so an explicit 0 is kept and only an absent count defaults to 1.
type legacyDocument struct {
	ShowTitle    string    `json:"showTitle"`
	EpisodeCount *int      `json:"episodeCount"`
	Episodes     []Episode `json:"episodes"`
}

// migrate upgrades a legacy show to a one-series document and persists it.
// A failed save is logged; the migrated document is still returned and the
// migration simply runs again on the next load.
func (store *DocumentStore) migrate(ctx context.Context, legacy legacyDocument) *Document {
	series := &Series{
		ID:           store.newID(),
		Title:        legacy.ShowTitle,
		Description:  LegacyDescription,
		CreatedAt:    store.now(),
		EpisodeCount: max(pointer.Fallback(legacy.EpisodeCount, DefaultEpisodeCount), 0),
		Episodes:     legacy.Episodes,
	}
	series.normalize()

	// Older writers could leave the arrays out of step; pad up to the count
	// and never discard stored episodes.
	for n := len(series.Episodes) + 1; n <= series.EpisodeCount; n++ {
		series.Episodes = append(series.Episodes, NewEpisode(n))
	}
	if len(series.Episodes) > series.EpisodeCount {
		series.EpisodeCount = len(series.Episodes)
	}

	doc := &Document{Series: []*Series{series}}

	if err := store.Save(ctx, doc); err != nil {
		store.metrics.DocumentOperation("migrate", metrics.ResultError)
		store.logger.ErrorContext(ctx, "legacy_document_migration_save_failed", slog.Any("error", err))
		return doc
	}

	store.metrics.DocumentOperation("migrate", metrics.ResultOK)
	store.logger.InfoContext(ctx, "legacy_document_migrated",
		slog.String("series_id", series.ID),
		slog.Int("episode_count", series.EpisodeCount),
	)
	return doc
}

// Save serialises the whole document and overwrites the stored copy.
func (store *DocumentStore) Save(ctx context.Context, doc *Document) error {
	doc.normalize()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		store.metrics.DocumentOperation("save", metrics.ResultError)
		return fmt.Errorf("series: encode document: %w", err)
	}

	if err := store.backend.Write(ctx, data); err != nil {
		store.metrics.DocumentOperation("save", metrics.ResultError)
		return fmt.Errorf("series: write %s document: %w", store.backend.Name(), err)
	}

	store.metrics.DocumentOperation("save", metrics.ResultOK)
	return nil
}
