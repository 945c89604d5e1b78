// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestGate_BurstFloorOfOne verifies even a near-zero sustained rate permits
// one immediate call.
func TestGate_BurstFloorOfOne(t *testing.T) {
	g := NewGate("horizons", 0.012)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := g.Acquire(ctx); err != nil {
		t.Errorf("first Acquire() on slow gate = %v, want immediate success", err)
	}
}

// TestGate_BlocksUntilContextCanceled verifies Acquire returns an error,
// not a token, when the bucket is drained and the context expires.
func TestGate_BlocksUntilContextCanceled(t *testing.T) {
	g := NewGate("horizons", 0.012)

	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("draining Acquire() = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := g.Acquire(ctx)
	if err == nil {
		t.Fatal("Acquire() on a drained slow gate succeeded, want context error")
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("Acquire() gave up after %v, want it to block until the deadline", elapsed)
	}
}

// TestGate_RefillsOverTime verifies a drained bucket serves another token
// once the sustained rate has replenished it.
func TestGate_RefillsOverTime(t *testing.T) {
	g := NewGate("sattrack", 50) // 50 req/s, one token every 20ms

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Drain the full burst, then one more Acquire must wait for a refill
	// rather than fail.
	for i := 0; i < 50*BurstMultiple; i++ {
		if err := g.Acquire(ctx); err != nil {
			t.Fatalf("draining Acquire() %d = %v", i, err)
		}
	}
	if err := g.Acquire(ctx); err != nil {
		t.Errorf("Acquire() after drain = %v, want success after refill", err)
	}
}

// TestGate_ConcurrentAcquiresRespectRateBound verifies several pollers
// sharing one gate cannot collectively complete more acquisitions over a
// window than the sustained rate plus the burst capacity allows.
func TestGate_ConcurrentAcquiresRespectRateBound(t *testing.T) {
	const (
		sustained = 0.5
		pollers   = 8
	)
	g := NewGate("sattrack", sustained) // burst of 5 tokens

	window := 400 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), window)
	defer cancel()

	var completed int64
	var wg sync.WaitGroup
	for i := 0; i < pollers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if err := g.Acquire(ctx); err != nil {
					return
				}
				atomic.AddInt64(&completed, 1)
			}
		}()
	}
	wg.Wait()

	burst := int64(sustained * BurstMultiple)
	bound := int64(sustained*window.Seconds()) + burst
	got := atomic.LoadInt64(&completed)
	if got > bound {
		t.Errorf("%d pollers completed %d acquisitions in %v, want at most %d", pollers, got, window, bound)
	}
	if got < burst {
		t.Errorf("%d pollers completed %d acquisitions, want the full burst of %d served", pollers, got, burst)
	}
}

// TestRegistry_RegisterAndLookup verifies gates are shared by name and
// unknown providers return nil.
func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	g := r.Register("sattrack", 0.28)
	if g == nil {
		t.Fatal("Register() returned nil")
	}
	if got := r.Gate("sattrack"); got != g {
		t.Error("Gate() did not return the registered gate")
	}
	if got := r.Gate("unknown"); got != nil {
		t.Errorf("Gate(unknown) = %v, want nil", got)
	}
}

// TestRegistry_ReRegisterReplaces verifies registering a provider twice
// installs a new gate.
func TestRegistry_ReRegisterReplaces(t *testing.T) {
	r := NewRegistry()

	first := r.Register("sattrack", 0.28)
	second := r.Register("sattrack", 1.0)

	if first == second {
		t.Error("re-registration returned the original gate")
	}
	if got := r.Gate("sattrack"); got != second {
		t.Error("Gate() did not return the replacement gate")
	}
}
