// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

// Package slice holds the few generic helpers the catalog and cart code use
// on top of the standard [slices] package.
package slice

// Map projects every element of in through fn. A nil input stays nil.
func Map[T, U any](in []T, fn func(T) U) []U {
	if in == nil {
		return nil
	}
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// Filter keeps the elements for which keep returns true, preserving order.
// The result is nil when nothing matches; callers that serialise it must
// normalise to an empty slice themselves.
func Filter[T any](in []T, keep func(T) bool) []T {
	var out []T
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reduce folds in from left to right starting at acc.
func Reduce[T, A any](in []T, acc A, fn func(A, T) A) A {
	for _, v := range in {
		acc = fn(acc, v)
	}
	return acc
}
