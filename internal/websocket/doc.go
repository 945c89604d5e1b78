// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

/*
Package websocket pushes live telemetry to connected dashboard clients.

It uses the gorilla/websocket library with a hub-client architecture: the
Hub owns the set of connections and broadcasts typed messages; each Client
runs a read pump (pings only, the dashboard is push-dominated) and a write
pump. The Bridge subscribes to the internal event bus and translates bus
events into WebSocket messages, so the orchestrator never knows the hub
exists.

Message Types:

  - telemetry: aggregate feed of live fetches ({streamId, payload, responseTime})
  - stream_error: a poll attempt failed ({streamId, error, retryable})
  - alert: a new alert was raised (filtered by the active view)
  - health: aggregate system health snapshot after each health check
  - critical_failure: initialization failed, clients should block the UI
  - tab_switched: the active dashboard view changed
  - ping / pong: client keepalive

Connection Lifecycle:

 1. Client connects via HTTP upgrade at /api/v1/ws
 2. Hub registers client
 3. Client starts read/write goroutines
 4. Bridge-forwarded events fan out to all clients
 5. Client disconnects (network error or explicit close)
 6. Hub unregisters client and cleans up

Thread Safety:

The Hub guards its client map with a mutex and broadcasts in deterministic
client-ID order. Handlers registered by the Bridge only enqueue onto the
hub's buffered channel, so event-bus publishers are never blocked by a
slow socket.

Timing:

  - writeWait: 10 seconds (time allowed to write a message)
  - pongWait: 60 seconds (time allowed to read a pong)
  - pingPeriod: 54 seconds (ping interval, must be < pongWait)
  - maxMessageSize: 512 KB
*/
package websocket
