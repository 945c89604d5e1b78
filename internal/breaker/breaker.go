// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package breaker wraps sony/gobreaker v2 as the per-stream failure
// isolation state machine. Each stream owns one Breaker; while it is open
// the orchestrator must not attempt a live fetch and serves cached data
// instead.
//
// The two-step form fits the poll loop: Allow() gates the tick before the
// rate limiter and fetch run, and the returned done callback reports the
// outcome afterwards. With MaxRequests=1, exactly one trial call passes
// through in half-open state; its success closes the circuit, its failure
// re-opens it.
package breaker

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/stellarview/stellarview/internal/logging"
	"github.com/stellarview/stellarview/internal/metrics"
)

// ErrOpen is returned by Allow while the circuit is open or a half-open
// trial is already in flight.
var ErrOpen = errors.New("circuit breaker open")

// Config holds the construction parameters for one stream's breaker.
type Config struct {
	// Name labels the breaker in logs and metrics, conventionally the
	// stream id.
	Name string

	// FailureThreshold is the consecutive failure count that opens the
	// circuit. Must be >= 1.
	FailureThreshold uint32

	// ResetTimeout is how long the circuit stays open before allowing a
	// half-open trial call.
	ResetTimeout time.Duration

	// MonitoringWindow is the rolling interval after which the closed-state
	// failure counts reset, so old failures do not accumulate forever.
	MonitoringWindow time.Duration
}

// Breaker is a per-stream circuit breaker.
type Breaker struct {
	name string
	cb   *gobreaker.TwoStepCircuitBreaker[any]
}

// New creates a breaker from cfg, registering state transitions with the
// metrics and logging layers.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(stateToFloat(gobreaker.StateClosed))

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1, // single trial call in half-open state
		Interval:    cfg.MonitoringWindow,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	}

	return &Breaker{
		name: cfg.Name,
		cb:   gobreaker.NewTwoStepCircuitBreaker[any](settings),
	}
}

// Allow gates one call attempt. If the circuit permits the call it returns
// a done callback that must be invoked with the call's outcome: done(true)
// resets the failure count and closes the circuit, done(false) counts a
// failure and may open it. If the circuit is open, Allow returns ErrOpen
// and the caller must serve cached data or signal unavailability.
//
// After ResetTimeout elapses the first Allow transitions the breaker to
// half-open and lets exactly one trial through; concurrent callers get
// ErrOpen until the trial resolves.
func (b *Breaker) Allow() (func(success bool), error) {
	done, err := b.cb.Allow()
	if err != nil {
		return nil, ErrOpen
	}
	return done, nil
}

// IsOpen reports whether the circuit currently rejects live calls. Note
// that gobreaker flips open to half-open lazily on the next Allow, so a
// breaker past its reset timeout still reports open here until probed.
func (b *Breaker) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}

// State returns the current state name: "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// ConsecutiveFailures returns the current consecutive failure count.
func (b *Breaker) ConsecutiveFailures() uint32 {
	return b.cb.Counts().ConsecutiveFailures
}

// Name returns the breaker's label.
func (b *Breaker) Name() string { return b.name }

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
