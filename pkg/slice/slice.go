// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with Map and Filter.
*/
package slice

// Map returns transform applied to every element, in order. A nil input
// yields nil.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Filter returns the elements for which keep is true, in order.
func Filter[T any](input []T, keep func(T) bool) []T {
	var result []T
	for _, v := range input {
		if keep(v) {
			result = append(result, v)
		}
	}
	return result
}
