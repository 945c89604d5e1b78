// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package alerts manages the user-visible failure channel of the telemetry
// core. Alerts are distinct from diagnostic logging: they are published on
// the event bus, retained in a bounded ring buffer, and surfaced to the
// dashboard via the HTTP API and WebSocket push.
package alerts

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stellarview/stellarview/internal/events"
	"github.com/stellarview/stellarview/internal/logging"
	"github.com/stellarview/stellarview/internal/metrics"
	"github.com/stellarview/stellarview/internal/models"
)

const (
	// DefaultHistorySize bounds the alert ring buffer.
	DefaultHistorySize = 50

	// DefaultAutoResolveAfter is how long a non-emergency auto-resolve
	// alert stays unacknowledged before the manager acknowledges it.
	DefaultAutoResolveAfter = 5 * time.Minute
)

// SourceSystem marks alerts not attributable to a single stream.
const SourceSystem = "system"

// Manager creates, retains and auto-acknowledges alerts.
type Manager struct {
	mu               sync.Mutex
	bus              *events.Bus
	history          []models.Alert // ring, newest last
	historySize      int
	autoResolveAfter time.Duration
	timers           map[string]*time.Timer
	closed           bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithHistorySize overrides the ring buffer capacity.
func WithHistorySize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.historySize = n
		}
	}
}

// WithAutoResolveAfter overrides the auto-acknowledge timeout.
func WithAutoResolveAfter(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.autoResolveAfter = d
		}
	}
}

// NewManager creates an alert manager publishing on bus.
func NewManager(bus *events.Bus, opts ...Option) *Manager {
	m := &Manager{
		bus:              bus,
		historySize:      DefaultHistorySize,
		autoResolveAfter: DefaultAutoResolveAfter,
		timers:           make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Raise creates an alert, retains it and publishes AlertCreated.
// Emergency alerts never auto-resolve regardless of autoResolve.
func (m *Manager) Raise(level models.AlertLevel, source, message string, autoResolve bool) models.Alert {
	if level == models.AlertEmergency {
		autoResolve = false
	}

	alert := models.Alert{
		ID:          uuid.NewString(),
		Level:       level,
		Message:     message,
		Source:      source,
		Timestamp:   time.Now(),
		AutoResolve: autoResolve,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return alert
	}
	m.history = append(m.history, alert)
	if len(m.history) > m.historySize {
		m.history = m.history[len(m.history)-m.historySize:]
	}
	if autoResolve {
		id := alert.ID
		m.timers[id] = time.AfterFunc(m.autoResolveAfter, func() {
			m.Acknowledge(id)
		})
	}
	m.mu.Unlock()

	logging.Warn().
		Str("alert_id", alert.ID).
		Str("level", string(level)).
		Str("source", source).
		Msg(message)
	metrics.AlertsCreated.WithLabelValues(string(level)).Inc()
	m.bus.Publish(events.AlertCreated{Alert: alert})

	return alert
}

// Acknowledge marks an alert as acknowledged. Unknown IDs are ignored.
func (m *Manager) Acknowledge(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
	}
	for i := range m.history {
		if m.history[i].ID == id && !m.history[i].Acknowledged {
			m.history[i].Acknowledged = true
			return true
		}
	}
	return false
}

// Active returns all unacknowledged alerts, oldest first.
func (m *Manager) Active() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := make([]models.Alert, 0, len(m.history))
	for _, a := range m.history {
		if !a.Acknowledged {
			active = append(active, a)
		}
	}
	return active
}

// History returns the retained alerts, oldest first.
func (m *Manager) History() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Alert, len(m.history))
	copy(out, m.history)
	return out
}

// Close stops all pending auto-resolve timers. Further Raise calls are
// published but no longer retained or auto-resolved.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}
