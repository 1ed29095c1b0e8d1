// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII slugs from arbitrary Unicode strings.
//
// # Usage
//
// Asset keys embed a slug of the uploaded file's base name (e.g. "strand-day-2")
// so stored objects stay recognisable without trusting client file names.
package slug

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxLength bounds the slug portion of generated file names.
const maxLength = 48

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces non-alphanumeric characters with hyphens.
// 5. Collapses multiple hyphens and trims leading/trailing hyphens.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// FileName slugs the base name of filename, keeps its lowercased extension,
// and truncates the slug to a bounded length. Empty slugs become "file".
//
//	FileName("Été à Paris.MP4") // "ete-a-paris.mp4"
func FileName(filename string) string {
	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))

	name := From(strings.TrimSuffix(base, filepath.Ext(base)))
	if len(name) > maxLength {
		name = strings.Trim(name[:maxLength], "-")
	}
	if name == "" {
		name = "file"
	}

	// Extensions only keep their alphanumerics
	ext = nonAlphanumeric.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
