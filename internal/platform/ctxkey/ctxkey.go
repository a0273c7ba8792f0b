// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

// Package ctxkey defines typed context keys shared by the transport client,
// the sandbox middleware and its handlers.
package ctxkey

// key is unexported so values stored under it cannot collide with string
// keys from other packages.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser is the context key for the sandbox caller ([sec.AuthClaims]).
	KeyUser key = "user"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
