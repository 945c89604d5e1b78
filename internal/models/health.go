// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package models

import "time"

// SystemStatus is the aggregate health of the telemetry backend, derived
// from the fraction of upstream APIs currently reachable.
type SystemStatus string

const (
	StatusOperational SystemStatus = "operational"
	StatusDegraded    SystemStatus = "degraded"
	StatusCritical    SystemStatus = "critical"
	StatusOffline     SystemStatus = "offline"
)

// APIStatus is the observed health of one upstream provider, refreshed by
// the orchestrator's health-check loop.
type APIStatus struct {
	Name                string        `json:"name"`
	IsOnline            bool          `json:"isOnline"`
	ResponseTime        time.Duration `json:"responseTime"`
	ErrorRate           float64       `json:"errorRate"`
	ConsecutiveFailures int           `json:"consecutiveFailures"`
	LastSuccessAt       time.Time     `json:"lastSuccessAt"`
}

// StreamStatus is a point-in-time summary of one stream's runtime state,
// safe to hand to API and WebSocket consumers.
type StreamStatus struct {
	ID                 string         `json:"id"`
	Priority           StreamPriority `json:"priority"`
	Active             bool           `json:"active"`
	BreakerState       string         `json:"breakerState"`
	ErrorCount         int            `json:"errorCount"`
	LastDataReceivedAt time.Time      `json:"lastDataReceivedAt"`
	CacheFresh         bool           `json:"cacheFresh"`
}

// SystemHealthSnapshot is the aggregate view recomputed by each health
// check and returned synchronously from the orchestrator's query surface.
type SystemHealthSnapshot struct {
	Status       SystemStatus            `json:"status"`
	Uptime       time.Duration           `json:"uptime"`
	GeneratedAt  time.Time               `json:"generatedAt"`
	APIs         map[string]APIStatus    `json:"apis"`
	Streams      map[string]StreamStatus `json:"streams"`
	ActiveAlerts []Alert                 `json:"activeAlerts"`
}
