// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package websocket

import (
	"github.com/stellarview/stellarview/internal/events"
	"github.com/stellarview/stellarview/internal/models"
)

// AlertFilter decides whether an alert should be pushed to connected
// dashboards. The tab manager implements this to keep informational
// background-stream alerts from interrupting the active view.
type AlertFilter interface {
	ShouldSurface(models.Alert) bool
}

// Bridge forwards bus events to the hub as typed WebSocket messages.
// Handlers only enqueue onto the hub's buffered broadcast channel, so
// they never block the synchronous publish fan-out.
type Bridge struct {
	hub    *Hub
	bus    *events.Bus
	filter AlertFilter
	subs   []*events.Subscription
}

// NewBridge wires the bus topics the dashboard consumes into the hub.
// streamIDs selects which per-stream error topics are forwarded; filter
// may be nil, in which case every alert is pushed.
func NewBridge(bus *events.Bus, hub *Hub, streamIDs []string, filter AlertFilter) *Bridge {
	b := &Bridge{hub: hub, bus: bus, filter: filter}

	b.subs = append(b.subs,
		bus.Subscribe(events.TopicTelemetryUpdate, func(ev events.Event) {
			if e, ok := ev.(events.TelemetryUpdate); ok {
				hub.BroadcastJSON(MessageTypeTelemetry, e)
			}
		}),
		bus.Subscribe(events.TopicAlertCreated, func(ev events.Event) {
			e, ok := ev.(events.AlertCreated)
			if !ok {
				return
			}
			if b.filter != nil && !b.filter.ShouldSurface(e.Alert) {
				return
			}
			hub.BroadcastJSON(MessageTypeAlert, e.Alert)
		}),
		bus.Subscribe(events.TopicHealthCheckComplete, func(ev events.Event) {
			if e, ok := ev.(events.HealthCheckComplete); ok {
				hub.BroadcastJSON(MessageTypeHealth, e.Snapshot)
			}
		}),
		bus.Subscribe(events.TopicCriticalFailure, func(ev events.Event) {
			if e, ok := ev.(events.CriticalFailure); ok {
				hub.BroadcastJSON(MessageTypeCriticalFailure, e)
			}
		}),
		bus.Subscribe(events.TopicTabSwitched, func(ev events.Event) {
			if e, ok := ev.(events.TabSwitched); ok {
				hub.BroadcastJSON(MessageTypeTabSwitched, e)
			}
		}),
	)

	for _, id := range streamIDs {
		b.subs = append(b.subs,
			bus.Subscribe(events.ErrorTopic(id), func(ev events.Event) {
				if e, ok := ev.(events.StreamError); ok {
					hub.BroadcastJSON(MessageTypeStreamError, e)
				}
			}),
		)
	}

	return b
}

// Close detaches the bridge from the bus.
func (b *Bridge) Close() {
	for _, sub := range b.subs {
		b.bus.Unsubscribe(sub)
	}
	b.subs = nil
}
