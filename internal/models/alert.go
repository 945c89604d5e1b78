// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package models

import "time"

// AlertLevel is the severity of an alert. Emergency alerts never
// auto-resolve and are reserved for system-wide failures.
type AlertLevel string

const (
	AlertInfo      AlertLevel = "info"
	AlertWarning   AlertLevel = "warning"
	AlertCritical  AlertLevel = "critical"
	AlertEmergency AlertLevel = "emergency"
)

// Alert is a leveled, timestamped notification of a threshold breach or
// failure. Alerts are the sole user-visible failure channel; they are
// distinct from diagnostic logging.
type Alert struct {
	ID           string     `json:"id"`
	Level        AlertLevel `json:"level"`
	Message      string     `json:"message"`
	Source       string     `json:"source"` // stream id or "system"
	Timestamp    time.Time  `json:"timestamp"`
	Acknowledged bool       `json:"acknowledged"`
	AutoResolve  bool       `json:"autoResolve"`
}
