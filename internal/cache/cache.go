// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package cache stores the last-known-good telemetry payload per stream so
// the orchestrator can keep serving data while an upstream API is failing.
//
// Entries expire after a TTL but are only treated as misses, never purged
// proactively; with a bounded stream count the memory cost is negligible.
// Payloads served from cache must be passed through Discount before they
// are rebroadcast, so consumers can tell replayed data from live data.
package cache

import (
	"sync"
	"time"

	"github.com/stellarview/stellarview/internal/metrics"
	"github.com/stellarview/stellarview/internal/models"
)

// DefaultTTL bounds how long a cached payload is considered servable.
// Chosen as roughly ten breaker reset cycles so cache entries survive a few
// open/half-open rounds but not an extended outage.
const DefaultTTL = 5 * time.Minute

// ConfidenceDiscount is the penalty factor applied to the confidence of a
// payload served from cache instead of a live fetch.
const ConfidenceDiscount = 0.7

type entry struct {
	payload   models.TelemetryPayload
	expiresAt time.Time
}

// ResponseCache is a thread-safe, time-boxed store of the most recent good
// payload per stream.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// New creates a cache with the given TTL; ttl <= 0 uses DefaultTTL.
func New(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Put stores the payload as the stream's last-known-good data point,
// superseding any previous entry.
func (c *ResponseCache) Put(streamID string, payload models.TelemetryPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[streamID] = entry{
		payload:   payload,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Get returns the cached payload for a stream if it has not expired.
// Expired or absent entries are misses.
func (c *ResponseCache) Get(streamID string) (models.TelemetryPayload, bool) {
	c.mu.RLock()
	e, ok := c.entries[streamID]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		metrics.CacheMisses.Inc()
		return models.TelemetryPayload{}, false
	}

	metrics.CacheHits.Inc()
	return e.payload, true
}

// Fresh reports whether a servable (unexpired) entry exists for the stream
// without counting toward hit/miss statistics.
func (c *ResponseCache) Fresh(streamID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[streamID]
	return ok && time.Now().Before(e.expiresAt)
}

// Discount returns a copy of the payload marked as cache-served: the
// confidence is multiplied by ConfidenceDiscount and the quality is
// degraded one step. The invariant is that a cache-served payload never
// carries "good" quality or its original confidence.
func Discount(p models.TelemetryPayload) models.TelemetryPayload {
	p.Confidence *= ConfidenceDiscount
	p.Quality = p.Quality.Degrade()
	return p
}
