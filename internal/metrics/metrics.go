// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package metrics exposes Prometheus collectors for the telemetry
// orchestration core: poll outcomes, circuit breaker state, rate limiter
// back-pressure, cache efficiency, alerts, and WebSocket fan-out.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Poll loop metrics

	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stream_poll_duration_seconds",
			Help:    "Duration of upstream fetches per stream",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stream", "provider"},
	)

	PollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_poll_errors_total",
			Help: "Total failed poll attempts per stream",
		},
		[]string{"stream", "provider"},
	)

	PollTicksSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_poll_ticks_skipped_total",
			Help: "Poll ticks skipped because the previous fetch was still in flight",
		},
		[]string{"stream"},
	)

	StreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streams_active",
			Help: "Number of currently active polling streams",
		},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state per stream (0=closed, 1=half-open, 2=open)",
		},
		[]string{"stream"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions per stream",
		},
		[]string{"stream", "from", "to"},
	)

	// Rate limiter metrics

	RateLimitWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rate_limit_wait_seconds",
			Help:    "Time spent waiting for a rate limit token per provider",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"provider"},
	)

	// Response cache metrics

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "response_cache_hits_total",
			Help: "Total response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "response_cache_misses_total",
			Help: "Total response cache misses (absent or expired)",
		},
	)

	// Alert metrics

	AlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_created_total",
			Help: "Alerts raised by level",
		},
		[]string{"level"},
	)

	// Upstream health metrics

	UpstreamOnline = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "upstream_api_online",
			Help: "Whether an upstream provider is reachable (1) or not (0)",
		},
		[]string{"provider"},
	)

	HealthCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_health_check_duration_seconds",
			Help:    "Duration of upstream connectivity probes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// WebSocket metrics

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Currently connected dashboard WebSocket clients",
		},
	)

	WebSocketMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Messages pushed to dashboard WebSocket clients",
		},
		[]string{"type"},
	)

	// HTTP API metrics

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
