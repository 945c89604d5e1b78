// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// StreamPriority classifies how important a data stream is to mission
// awareness. Priority feeds alert severity: failures on critical streams
// raise critical alerts instead of warnings.
type StreamPriority string

const (
	PriorityCritical StreamPriority = "critical"
	PriorityHigh     StreamPriority = "high"
	PriorityMedium   StreamPriority = "medium"
	PriorityLow      StreamPriority = "low"
)

// DataQuality grades a telemetry payload. Live fetches are "good"; payloads
// replayed from cache are degraded to "poor", and stale cache entries that
// are still the best available data are graded "bad".
type DataQuality string

const (
	QualityGood DataQuality = "good"
	QualityPoor DataQuality = "poor"
	QualityBad  DataQuality = "bad"
)

// Degrade returns the next-worse quality grade. Good data degrades to poor,
// anything else bottoms out at bad.
func (q DataQuality) Degrade() DataQuality {
	if q == QualityGood {
		return QualityPoor
	}
	return QualityBad
}

// AlertThresholds holds the per-stream limits that trigger alerts when
// crossed during polling or the data-quality sweep.
type AlertThresholds struct {
	MaxResponseTime time.Duration `koanf:"max_response_time" json:"maxResponseTime"`
	MaxErrorRate    float64       `koanf:"max_error_rate" json:"maxErrorRate"`
	MaxDataAge      time.Duration `koanf:"max_data_age" json:"maxDataAge"`
}

// StreamDefinition is the static configuration for one named data feed.
// Definitions are registered at orchestrator startup and never mutated;
// runtime state lives separately in the orchestrator.
type StreamDefinition struct {
	ID              string            `koanf:"id" json:"id" validate:"required"`
	Provider        string            `koanf:"provider" json:"provider" validate:"required"`
	Kind            string            `koanf:"kind" json:"kind" validate:"required"`
	Params          map[string]string `koanf:"params" json:"params,omitempty"`
	Priority        StreamPriority    `koanf:"priority" json:"priority" validate:"required,oneof=critical high medium low"`
	PollInterval    time.Duration     `koanf:"poll_interval" json:"pollInterval" validate:"required"`
	MaxRetries      int               `koanf:"max_retries" json:"maxRetries" validate:"min=0"`
	AlertThresholds AlertThresholds   `koanf:"alert_thresholds" json:"alertThresholds"`
}

// TelemetryPayload is one fetched data point. Payloads are immutable once
// constructed; later fetches supersede rather than mutate them. The Payload
// field is an opaque blob meaningful only to dashboard consumers.
type TelemetryPayload struct {
	Timestamp  time.Time       `json:"timestamp"`
	Source     string          `json:"source"`
	DataType   string          `json:"dataType"`
	Payload    json.RawMessage `json:"payload"`
	Quality    DataQuality     `json:"quality"`
	Confidence float64         `json:"confidence"`
}

// Age reports how old the payload is relative to now.
func (p *TelemetryPayload) Age(now time.Time) time.Duration {
	return now.Sub(p.Timestamp)
}
