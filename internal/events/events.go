// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package events provides the typed publish/subscribe bus that decouples the
// stream orchestrator from its consumers (WebSocket hub, tab manager, API).
//
// Every event is a distinct Go type implementing Event, so subscribers can
// type-switch on the payload instead of runtime-checking loose fields.
// Delivery is synchronous and FIFO by subscription order; handlers must not
// block on I/O - long work belongs in a goroutine scheduled by the handler.
package events

import (
	"time"

	"github.com/stellarview/stellarview/internal/models"
)

// Reserved and aggregate topics. Per-stream topics are derived with
// UpdateTopic and ErrorTopic.
const (
	TopicError               = "error"
	TopicTelemetryUpdate     = "telemetry-update"
	TopicAlertCreated        = "alert-created"
	TopicHealthCheckComplete = "health-check-complete"
	TopicCriticalFailure     = "critical-failure"
	TopicTabSwitched         = "tab-switched"
)

// UpdateTopic returns the per-stream update topic, e.g. "iss-position-update".
func UpdateTopic(streamID string) string { return streamID + "-update" }

// ErrorTopic returns the per-stream error topic, e.g. "iss-position-error".
func ErrorTopic(streamID string) string { return streamID + "-error" }

// Event is implemented by every payload published on the Bus.
type Event interface {
	Topic() string
}

// StreamUpdate carries a fresh or cache-served telemetry payload for one
// stream. Published on "<streamId>-update".
type StreamUpdate struct {
	StreamID string                  `json:"streamId"`
	Payload  models.TelemetryPayload `json:"payload"`
}

func (e StreamUpdate) Topic() string { return UpdateTopic(e.StreamID) }

// StreamError reports a failed poll attempt for one stream. Retryable is
// false once the stream's consecutive error count has reached its retry
// budget. Published on "<streamId>-error".
type StreamError struct {
	StreamID  string `json:"streamId"`
	Err       string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func (e StreamError) Topic() string { return ErrorTopic(e.StreamID) }

// TelemetryUpdate is the aggregate feed of all live fetches, published on
// "telemetry-update" alongside the per-stream topic.
type TelemetryUpdate struct {
	StreamID     string                  `json:"streamId"`
	Payload      models.TelemetryPayload `json:"payload"`
	ResponseTime time.Duration           `json:"responseTime"`
}

func (e TelemetryUpdate) Topic() string { return TopicTelemetryUpdate }

// AlertCreated is published whenever the alert manager records a new alert.
type AlertCreated struct {
	Alert models.Alert `json:"alert"`
}

func (e AlertCreated) Topic() string { return TopicAlertCreated }

// HealthCheckComplete carries the aggregate snapshot recomputed by each
// health-check pass.
type HealthCheckComplete struct {
	Snapshot models.SystemHealthSnapshot `json:"snapshot"`
}

func (e HealthCheckComplete) Topic() string { return TopicHealthCheckComplete }

// CriticalFailure signals that system initialization failed outright.
// Consumers are expected to present a blocking error state.
type CriticalFailure struct {
	Err       string                      `json:"error"`
	Timestamp time.Time                   `json:"timestamp"`
	Snapshot  models.SystemHealthSnapshot `json:"snapshot"`
}

func (e CriticalFailure) Topic() string { return TopicCriticalFailure }

// TabSwitched records a dashboard view change.
type TabSwitched struct {
	ViewID    string    `json:"viewId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e TabSwitched) Topic() string { return TopicTabSwitched }

// HandlerError is re-published on the reserved "error" topic when a
// subscriber panics, so one broken consumer cannot silence the rest.
type HandlerError struct {
	SourceTopic string `json:"sourceTopic"`
	Recovered   string `json:"recovered"`
}

func (e HandlerError) Topic() string { return TopicError }
