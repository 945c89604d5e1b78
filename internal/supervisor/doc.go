// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

/*
Package supervisor provides process supervision for Stellarview using
suture v4.

It implements a hierarchical supervisor tree that manages the lifecycle of
all long-running services, with Erlang/OTP-style automatic restart,
failure isolation, and graceful shutdown.

# Overview

The tree organizes services into three layers for failure isolation:

	RootSupervisor ("stellarview")
	├── PollingSupervisor ("polling-layer")
	│   └── RunnerService (stream orchestrator)
	├── MessagingSupervisor ("messaging-layer")
	│   └── HubService (WebSocket hub)
	└── APISupervisor ("api-layer")
	    └── HTTPService

This hierarchy ensures that:
  - A crash in the poll loops doesn't drop WebSocket connections
  - Orchestrator restarts don't impact API availability; the dashboard
    keeps serving cached health state
  - Each layer has independent failure counting

# Usage

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    ...
	}

	tree.AddPollingService(supervisor.NewRunnerService("orchestrator", orch))
	tree.AddMessagingService(supervisor.NewHubService(hub))
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))

	// Blocks until the context is canceled.
	err = tree.Serve(ctx)

# Failure Handling

The supervisor uses a failure counter with exponential decay: each crash
increments the counter, the counter decays over FailureDecay seconds, and
once it exceeds FailureThreshold restarts are delayed by FailureBackoff.
Defaults match suture's production defaults (5 failures, 30s decay, 15s
backoff, 10s shutdown timeout).

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return nil for a clean stop (no restart), an error to be restarted, and
return promptly once the context is canceled.

# Debugging Shutdown Issues

If services don't stop within the timeout, UnstoppedServiceReport lists
them. Common causes are goroutines ignoring context cancellation and
blocked network I/O without deadlines.
*/
package supervisor
