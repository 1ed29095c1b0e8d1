// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer holds generic helpers for the optional fields of request
// payloads, where nil means "not supplied".
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Fallback dereferences p, or returns fallback when p is nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
