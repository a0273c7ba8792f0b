// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package constants provides centralized, immutable values for the entire module.

Categories:

  - Metadata: application names used in log enrichment.
  - Server Timing: timeouts for the sandbox HTTP server.
  - Transport: header names shared by the client and the sandbox.
  - Commerce: catalog and checkout tunables.

Using this package keeps magic strings and numbers out of the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName        = "bazinga-storefront"
	SandboxAppName = "bazinga-sandbox"
	AppVersion     = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests during shutdown.
	ShutdownTimeout = 30 * time.Second

	// StartupTimeout bounds the initial catalog load of the CLI.
	StartupTimeout = 30 * time.Second
)

// # Transport

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderAuthorization = "Authorization"
	HeaderOrigin        = "Origin"
)

// # Sandbox Rate Limiting

const (
	// SandboxRateLimitRPS is the per-IP request rate the sandbox accepts.
	SandboxRateLimitRPS = 50

	// SandboxRateLimitBurst is the per-IP burst the sandbox accepts.
	SandboxRateLimitBurst = 200

	// RateLimitCleanupInterval is how often idle limiter entries are swept.
	RateLimitCleanupInterval = time.Minute

	// RateLimitClientTTL is how long an idle client keeps its bucket.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the 'iss' claim of sandbox-issued tokens.
	AuthIssuer = "sandbox.bazinga.local"
)

// # Commerce

const (
	// NewArrivalsLimit is the size of the "new arrivals" catalog section.
	NewArrivalsLimit = 6

	// DigitalReadsLimit is the size of the "digital reads" catalog section.
	DigitalReadsLimit = 10

	// DefaultPaymentDelay is the simulated payment processing time.
	DefaultPaymentDelay = 2 * time.Second

	// NewsTTL is how long a published news post stays in the feed.
	NewsTTL = 7 * 24 * time.Hour
)

// # JSON Field Identifiers

const (
	FieldError  = "error"
	FieldCode   = "code"
	FieldStatus = "status"
	FieldApp    = "app"
)
