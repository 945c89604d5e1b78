// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package ratelimit gates outbound calls to external telemetry providers so
// the orchestrator never exhausts a provider quota. One token-bucket limiter
// exists per provider and is shared by every stream that polls it.
//
// Acquire back-pressures callers instead of failing them: if no token is
// available it blocks until one is, or until the caller's context is
// canceled. Requests are never discarded.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/stellarview/stellarview/internal/metrics"
)

// BurstMultiple sizes the bucket as a short multiple of the sustained rate,
// allowing brief catch-up bursts after idle periods without breaching the
// provider's hourly or daily quota.
const BurstMultiple = 10

// Gate is a blocking token-bucket limiter for one external provider.
type Gate struct {
	name    string
	limiter *rate.Limiter
}

// NewGate creates a limiter for a provider allowing sustained requests per
// second. Burst capacity is BurstMultiple times the sustained rate, with a
// floor of one token so very slow providers (e.g. ~1000 calls/day, 0.012
// req/s) can still make single calls immediately.
func NewGate(name string, sustained float64) *Gate {
	burst := int(sustained * BurstMultiple)
	if burst < 1 {
		burst = 1
	}
	return &Gate{
		name:    name,
		limiter: rate.NewLimiter(rate.Limit(sustained), burst),
	}
}

// Acquire consumes one token, blocking until a token is available or ctx is
// canceled. The wait duration is recorded for diagnostics.
func (g *Gate) Acquire(ctx context.Context) error {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", g.name, err)
	}
	metrics.RateLimitWaitDuration.WithLabelValues(g.name).Observe(time.Since(start).Seconds())
	return nil
}

// Name returns the provider this gate protects.
func (g *Gate) Name() string { return g.name }

// Registry holds the per-provider gates shared across streams.
type Registry struct {
	mu    sync.RWMutex
	gates map[string]*Gate
}

// NewRegistry creates an empty gate registry.
func NewRegistry() *Registry {
	return &Registry{gates: make(map[string]*Gate)}
}

// Register creates and stores a gate for a provider. Registering the same
// provider twice replaces the previous gate.
func (r *Registry) Register(name string, sustained float64) *Gate {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := NewGate(name, sustained)
	r.gates[name] = g
	return g
}

// Gate returns the limiter for a provider, or nil if none is registered.
func (r *Registry) Gate(name string) *Gate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gates[name]
}
