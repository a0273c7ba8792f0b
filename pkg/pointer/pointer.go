// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

// Package pointer handles the optional fields of the storefront wire model.
//
// The backend omits price, subscription and expiry fields freely, so decoded
// records carry them as pointers. These helpers keep nil checks out of the
// catalog, commerce and CLI code.
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Val returns *p, or the zero value of T when p is nil.
func Val[T any](p *T) T {
	var zero T
	return Fallback(p, zero)
}

// Fallback returns *p, or def when p is nil.
func Fallback[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
