// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

/*
Package models defines the data structures shared across Stellarview.

It is the single source of truth for the orchestration core's domain
types and for the shapes handed to API and WebSocket consumers.

Model Categories:

 1. Stream configuration:
    - StreamDefinition: one polled telemetry stream (provider, cadence,
    retry budget, alert thresholds). Immutable once registered.
    - ViewDefinition: a dashboard view and the streams it requires.

 2. Telemetry:
    - TelemetryPayload: one fetched datum with quality and confidence.
    Immutable; superseded by later payloads, never mutated.
    - DataQuality: good / poor / bad, degraded as data ages.

 3. Health:
    - SystemStatus, APIStatus, StreamStatus, SystemHealthSnapshot: the
    aggregate state recomputed by each health-check pass.

 4. Alerts:
    - Alert, AlertLevel: operator-facing notifications raised by the
    orchestrator and the data-quality sweep.

Thread Safety:

All models are plain data structures with no internal locking. They are
safe for concurrent reads; ownership of mutation is documented on the
packages that hold them.

JSON Marshaling:

All models carry camelCase JSON tags matching the dashboard's wire
format. time.Time fields use RFC3339.
*/
package models
