// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package series defines the document model and the consistency rules of the
Reel documentary library.

The whole library is one JSON [Document]: an ordered list of [Series], each
owning ordered [Episode] values, each owning ordered [MediaItem] values plus an
optional thumbnail and background music track. Binary assets live in a
separate [storage.AssetStore]; the document only holds references to them.

Core Responsibility:

  - Model: Series → Episodes → Media, with episodeCount always equal to len(episodes).
  - Consistency: Every mutation that drops a reference also deletes the asset,
    best-effort, through the [Lifecycle] coordinator.
  - Persistence: [DocumentStore] loads/saves the document and upgrades the
    legacy single-show shape.

# Episode addressing

Episodes have no id; HTTP clients address them by 0-based position. Shrinking
episodeCount or replacing the episodes array invalidates previously issued
indices.
*/
package series

import (
	"fmt"
	"time"
)

// # Domain Enums

// MediaType classifies a media item. It is derived from the file extension
// at ingestion and never changes afterwards.
type MediaType string

const (
	// MediaImage covers every accepted non-video upload.
	MediaImage MediaType = "image"

	// MediaVideo covers mp4, webm, mov, avi and mkv uploads.
	MediaVideo MediaType = "video"
)

// IsValid reports whether t is a recognised [MediaType] value.
func (t MediaType) IsValid() bool {
	return t == MediaImage || t == MediaVideo
}

// # Domain Entities

// Document is the persisted root. Series is never nil after a load.
type Document struct {
	Series []*Series `json:"series"`
}

// Series is a documentary show.
type Series struct {
	// ID is generated at creation and never changes.
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Thumbnail   *string `json:"thumbnail"`

	// CreatedAt is set once, at creation or migration.
	CreatedAt time.Time `json:"createdAt"`

	// EpisodeCount always equals len(Episodes) once a mutation is committed.
	EpisodeCount int       `json:"episodeCount"`
	Episodes     []Episode `json:"episodes"`
}

// Episode is one positional unit of a series.
type Episode struct {
	Title     string  `json:"title"`
	Thumbnail *string `json:"thumbnail"`
	Music     *string `json:"music"`

	// MusicOriginalName is only meaningful while Music is set.
	MusicOriginalName *string     `json:"musicOriginalName"`
	Media             []MediaItem `json:"media"`
}

// MediaItem is one image or video attached to an episode.
type MediaItem struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Type         MediaType `json:"type"`
	URL          string    `json:"url"`
}

// # Constructors

// EpisodeTitle returns the default title for the episode at 1-based position n.
func EpisodeTitle(n int) string {
	return fmt.Sprintf("Episode %d", n)
}

// NewEpisode returns an empty episode titled for 1-based position n.
func NewEpisode(n int) Episode {
	return Episode{Title: EpisodeTitle(n), Media: []MediaItem{}}
}

// # Asset References

// Reference returns the locator used to delete the item's asset. The storage
// key wins; the URL is the fallback for items written without one.
func (item MediaItem) Reference() string {
	if item.Filename != "" {
		return item.Filename
	}
	return item.URL
}

// AssetReferences lists every asset the episode owns: thumbnail, music, then
// media in order.
func (episode *Episode) AssetReferences() []string {
	refs := make([]string, 0, len(episode.Media)+2)
	if episode.Thumbnail != nil {
		refs = append(refs, *episode.Thumbnail)
	}
	if episode.Music != nil {
		refs = append(refs, *episode.Music)
	}
	for _, item := range episode.Media {
		if ref := item.Reference(); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// AssetReferences lists every asset reachable from the series: its thumbnail,
// then each episode's references in episode order.
func (series *Series) AssetReferences() []string {
	var refs []string
	if series.Thumbnail != nil {
		refs = append(refs, *series.Thumbnail)
	}
	for i := range series.Episodes {
		refs = append(refs, series.Episodes[i].AssetReferences()...)
	}
	return refs
}

// AssetReferences lists every asset reachable from the document.
func (doc *Document) AssetReferences() []string {
	var refs []string
	for _, series := range doc.Series {
		refs = append(refs, series.AssetReferences()...)
	}
	return refs
}

// # Normalisation

// normalize restores the structural invariants readers rely on: no nil
// slices, no nil series, and music names cleared when music is absent.
func (doc *Document) normalize() {
	if doc.Series == nil {
		doc.Series = []*Series{}
	}

	kept := doc.Series[:0]
	for _, series := range doc.Series {
		if series == nil {
			continue
		}
		series.normalize()
		kept = append(kept, series)
	}
	doc.Series = kept
}

func (series *Series) normalize() {
	if series.Episodes == nil {
		series.Episodes = []Episode{}
	}
	for i := range series.Episodes {
		episode := &series.Episodes[i]
		if episode.Media == nil {
			episode.Media = []MediaItem{}
		}
		if episode.Music == nil {
			episode.MusicOriginalName = nil
		}
	}
}

// # Queries

// find returns the series with id, or nil.
func (doc *Document) find(id string) (int, *Series) {
	for i, series := range doc.Series {
		if series.ID == id {
			return i, series
		}
	}
	return -1, nil
}

// Primary returns the first series, which the legacy single-show API acts on.
func (doc *Document) Primary() *Series {
	if len(doc.Series) == 0 {
		return nil
	}
	return doc.Series[0]
}

// # Legacy View

// LegacyShow is the pre multi-series document shape. It is accepted on load
// and still served by the legacy API for single-show clients.
type LegacyShow struct {
	ShowTitle    string    `json:"showTitle"`
	EpisodeCount int       `json:"episodeCount"`
	Episodes     []Episode `json:"episodes"`
}

// LegacyView projects a series onto the legacy shape.
func LegacyView(series *Series) LegacyShow {
	return LegacyShow{
		ShowTitle:    series.Title,
		EpisodeCount: series.EpisodeCount,
		Episodes:     series.Episodes,
	}
}
