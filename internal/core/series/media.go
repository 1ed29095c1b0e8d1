// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"path/filepath"
	"slices"
	"strings"
)

// # Upload Classification

var (
	// VideoExtensions are classified as [MediaVideo].
	VideoExtensions = []string{"mp4", "webm", "mov", "avi", "mkv"}

	// ImageExtensions are the accepted still formats, classified as [MediaImage].
	ImageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

	// MusicExtensions are accepted for episode background music.
	MusicExtensions = []string{"mp3", "wav", "ogg", "m4a", "aac", "flac"}
)

// MediaExtensions returns every extension accepted as an episode media item.
func MediaExtensions() []string {
	return slices.Concat(ImageExtensions, VideoExtensions)
}

// extension returns the lowercased extension of name without the dot.
func extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// ClassifyMedia derives a media type from a file name. Anything that is not a
// known video extension is an image; callers reject unaccepted types first.
func ClassifyMedia(originalName string) MediaType {
	if slices.Contains(VideoExtensions, extension(originalName)) {
		return MediaVideo
	}
	return MediaImage
}
