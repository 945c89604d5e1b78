// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package clients contains thin HTTP clients for the external telemetry
// providers. The orchestrator only sees the Client interface; provider URL
// structure stays inside this package. Rate limits are NOT enforced here -
// callers go through the ratelimit gates first.
package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// FetchTimeout is the hard cap on any single upstream request, independent
// of circuit breaker state. A fetch exceeding it counts as a failure for
// breaker and alerting purposes.
const FetchTimeout = 10 * time.Second

// Client is the boundary contract for one upstream provider.
type Client interface {
	// Name identifies the provider in health snapshots and metrics.
	Name() string

	// Fetch retrieves one data point of the given kind. The returned bytes
	// are an opaque blob handed to dashboard consumers unparsed. A non-2xx
	// status or malformed body yields a *APIError.
	Fetch(ctx context.Context, kind string, params map[string]string) (json.RawMessage, error)

	// TestConnection performs a lightweight probe used by the health-check
	// loop. A nil error means the provider is online.
	TestConnection(ctx context.Context) error
}

// APIError is the typed error for upstream HTTP failures.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}
