// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

The same struct configures both binaries: the storefront client reads the
API and checkout settings, the sandbox backend reads the SANDBOX_* settings.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the storefront client and sandbox.
type Config struct {

	// Runtime settings
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Backend transport
	APIBaseURL     string        `env:"API_BASE_URL"    envDefault:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	// Outgoing request pacing (token bucket)
	RateLimitRPS   float64 `env:"CLIENT_RATE_LIMIT_RPS"   envDefault:"10"`
	RateLimitBurst int     `env:"CLIENT_RATE_LIMIT_BURST" envDefault:"20"`

	// Checkout
	PaymentDelay time.Duration `env:"PAYMENT_DELAY" envDefault:"2s"`

	// CommerceFailurePolicy selects what a collection shows after a failed
	// fetch or mutation: "replace" (error state) or "retain" (last good list).
	CommerceFailurePolicy string `env:"COMMERCE_FAILURE_POLICY" envDefault:"replace"`

	// Sandbox backend
	SandboxPort        string        `env:"SANDBOX_PORT"         envDefault:"8080"`
	SandboxTokenSecret string        `env:"SANDBOX_TOKEN_SECRET" envDefault:"bazinga-sandbox-secret"`
	SandboxTokenTTL    time.Duration `env:"SANDBOX_TOKEN_TTL"    envDefault:"24h"`
}

// # Failure Policy

// FailurePolicy is the parsed form of COMMERCE_FAILURE_POLICY.
type FailurePolicy string

const (
	FailurePolicyReplace FailurePolicy = "replace"
	FailurePolicyRetain  FailurePolicy = "retain"
)

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Map environment variables onto the struct, applying defaults.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Reject unknown policies early instead of silently falling back.
	if _, err := cfg.FailurePolicy(); err != nil {
		return nil, err
	}

	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("config: client rate limit must be positive (rps=%v burst=%d)", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	return cfg, nil
}

// FailurePolicy returns the commerce failure policy.
func (c *Config) FailurePolicy() (FailurePolicy, error) {
	switch policy := FailurePolicy(strings.ToLower(strings.TrimSpace(c.CommerceFailurePolicy))); policy {
	case FailurePolicyReplace, FailurePolicyRetain:
		return policy, nil
	default:
		return "", fmt.Errorf("config: unknown COMMERCE_FAILURE_POLICY %q", c.CommerceFailurePolicy)
	}
}

// IsDevelopment reports whether the process is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the process is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
