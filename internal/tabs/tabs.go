// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package tabs maps dashboard views to the telemetry streams they need.
// It is a demand-driven activation layer over the orchestrator: switching
// to a view starts any streams that view requires and immediately replays
// the latest cached payload so the view is never blank while waiting for
// the next poll tick. The package owns no caching or breaker logic.
package tabs

import (
	"fmt"
	"sync"
	"time"

	"github.com/stellarview/stellarview/internal/alerts"
	"github.com/stellarview/stellarview/internal/events"
	"github.com/stellarview/stellarview/internal/logging"
	"github.com/stellarview/stellarview/internal/models"
	"github.com/stellarview/stellarview/internal/orchestrator"
)

// Manager tracks which view is active and which streams it activated on
// the orchestrator. Safe for concurrent use.
type Manager struct {
	bus  *events.Bus
	orch *orchestrator.Orchestrator

	mu         sync.Mutex
	views      map[string]models.ViewDefinition
	activeView string
	// streams this manager started, so Cleanup stops only what it owns
	started map[string]bool
}

// NewManager builds a Manager over the given view registry. Views are
// immutable after construction.
func NewManager(views []models.ViewDefinition, orch *orchestrator.Orchestrator, bus *events.Bus) *Manager {
	registry := make(map[string]models.ViewDefinition, len(views))
	for _, v := range views {
		registry[v.ID] = v
	}
	return &Manager{
		bus:     bus,
		orch:    orch,
		views:   registry,
		started: make(map[string]bool),
	}
}

// SwitchToTab activates the named view: every required stream that is not
// already running is started, the latest cached payload for each required
// stream is re-published immediately, and the view is recorded as active
// for alert-propagation filtering. Streams required by other views keep
// running; deactivation happens only through Cleanup or explicit stops.
func (m *Manager) SwitchToTab(viewID string) error {
	m.mu.Lock()
	view, ok := m.views[viewID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown view %q", viewID)
	}
	m.activeView = viewID
	m.mu.Unlock()

	for _, streamID := range view.Streams {
		if !m.orch.StreamActive(streamID) {
			if err := m.orch.StartStream(streamID); err != nil {
				logging.Warn().Err(err).
					Str("view", viewID).
					Str("stream", streamID).
					Msg("failed to start stream for view")
				continue
			}
			m.mu.Lock()
			m.started[streamID] = true
			m.mu.Unlock()
		}
		// Replay whatever the cache holds so the view renders instantly.
		if !m.orch.ReplayCached(streamID) {
			logging.Debug().Str("stream", streamID).Msg("no cached payload to replay")
		}
	}

	m.bus.Publish(events.TabSwitched{ViewID: viewID, Timestamp: time.Now()})
	logging.Info().Str("view", viewID).Int("streams", len(view.Streams)).Msg("switched active view")
	return nil
}

// ActiveView returns the id of the currently active view, or "" when no
// view has been activated yet.
func (m *Manager) ActiveView() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeView
}

// Views returns the registered view definitions.
func (m *Manager) Views() []models.ViewDefinition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ViewDefinition, 0, len(m.views))
	for _, v := range m.views {
		out = append(out, v)
	}
	return out
}

// ShouldSurface reports whether an alert should interrupt the active view.
// Warnings and above always surface. Informational alerts surface only
// when they concern the active view's streams or the system itself, so
// background-stream chatter does not interrupt the foreground.
func (m *Manager) ShouldSurface(a models.Alert) bool {
	if a.Level != models.AlertInfo {
		return true
	}
	if a.Source == alerts.SourceSystem {
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	view, ok := m.views[m.activeView]
	if !ok {
		return false
	}
	for _, streamID := range view.Streams {
		if streamID == a.Source {
			return true
		}
	}
	return false
}

// Cleanup stops every stream this manager started and clears the active
// view. Streams started elsewhere are left untouched.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	owned := make([]string, 0, len(m.started))
	for id := range m.started {
		owned = append(owned, id)
	}
	m.started = make(map[string]bool)
	m.activeView = ""
	m.mu.Unlock()

	for _, id := range owned {
		m.orch.StopStream(id)
	}
}
