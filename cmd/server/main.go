// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Command server runs the Stellarview telemetry backend: the stream
// orchestrator, the WebSocket fan-out and the HTTP API, all under one
// suture supervision tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stellarview/stellarview/internal/alerts"
	"github.com/stellarview/stellarview/internal/api"
	"github.com/stellarview/stellarview/internal/cache"
	"github.com/stellarview/stellarview/internal/clients"
	"github.com/stellarview/stellarview/internal/config"
	"github.com/stellarview/stellarview/internal/events"
	"github.com/stellarview/stellarview/internal/logging"
	"github.com/stellarview/stellarview/internal/orchestrator"
	"github.com/stellarview/stellarview/internal/ratelimit"
	"github.com/stellarview/stellarview/internal/supervisor"
	"github.com/stellarview/stellarview/internal/tabs"
	ws "github.com/stellarview/stellarview/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("providers", len(cfg.Providers)).
		Int("streams", len(cfg.Streams)).
		Int("views", len(cfg.Views)).
		Msg("starting stellarview")

	// Core collaborators. The bus is the only channel between the
	// orchestration core and the dashboard-facing layers.
	bus := events.NewBus()
	respCache := cache.New(cfg.Orchestrator.CacheTTL)
	alertMgr := alerts.NewManager(bus,
		alerts.WithHistorySize(cfg.Alerts.HistorySize),
		alerts.WithAutoResolveAfter(cfg.Alerts.AutoResolveAfter),
	)
	defer alertMgr.Close()

	// One rate-limit gate and one client per provider, shared by every
	// stream that polls it.
	limits := ratelimit.NewRegistry()
	providerClients := make(map[string]clients.Client, len(cfg.Providers))
	for _, p := range cfg.Providers {
		limits.Register(p.Name, p.SustainedRate)
		c, err := buildClient(p)
		if err != nil {
			logging.Fatal().Err(err).Str("provider", p.Name).Msg("failed to build provider client")
		}
		providerClients[p.Name] = c
		logging.Info().
			Str("provider", p.Name).
			Str("type", p.Type).
			Float64("sustained_rate", p.SustainedRate).
			Msg("provider configured")
	}

	orch, err := orchestrator.New(
		cfg.Orchestrator,
		cfg.Streams,
		providerClients,
		bus,
		respCache,
		alertMgr,
		limits,
		orchestrator.RetryPolicy{StartupRetryDelay: cfg.Orchestrator.StartupRetryDelay},
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	tabMgr := tabs.NewManager(cfg.Views, orch, bus)
	defer tabMgr.Cleanup()

	// WebSocket fan-out, fed from the bus. The tab manager filters which
	// informational alerts reach connected dashboards.
	hub := ws.NewHub()
	bridge := ws.NewBridge(bus, hub, orch.StreamIDs(), tabMgr)
	defer bridge.Close()

	handler := api.NewHandler(orch, alertMgr, tabMgr, hub, api.NewAssistantProxy(cfg.Assistant))
	router := api.NewRouter(handler, api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	tree.AddPollingService(supervisor.NewRunnerService("orchestrator", orch))
	tree.AddMessagingService(supervisor.NewHubService(hub))
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("services added to supervisor tree")

	// Activate the default view once the orchestrator's first health check
	// has run, so its streams start polling and cached replay has a bus to
	// land on.
	if len(cfg.Views) > 0 {
		defaultView := cfg.Views[0].ID
		bus.SubscribeOnce(events.TopicHealthCheckComplete, func(events.Event) {
			if err := tabMgr.SwitchToTab(defaultView); err != nil {
				logging.Err(err).Str("view", defaultView).Msg("failed to activate default view")
			}
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	logging.Info().Msg("stopped gracefully")
}

// buildClient constructs the provider-specific API client.
func buildClient(p config.ProviderConfig) (clients.Client, error) {
	switch p.Type {
	case "sattrack":
		return clients.NewSatTrackClient(p.Name, p.URL, p.APIKey), nil
	case "horizons":
		return clients.NewHorizonsClient(p.Name, p.URL), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", p.Type)
	}
}
