// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package tabs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/stellarview/stellarview/internal/alerts"
	"github.com/stellarview/stellarview/internal/cache"
	"github.com/stellarview/stellarview/internal/clients"
	"github.com/stellarview/stellarview/internal/config"
	"github.com/stellarview/stellarview/internal/events"
	"github.com/stellarview/stellarview/internal/models"
	"github.com/stellarview/stellarview/internal/orchestrator"
	"github.com/stellarview/stellarview/internal/ratelimit"
)

// parkedClient answers health probes instantly but parks every fetch until
// the test releases it, so poll loops contribute no bus traffic of their own.
type parkedClient struct {
	name string
	gate chan struct{}
}

func (c *parkedClient) Name() string { return c.name }

func (c *parkedClient) Fetch(ctx context.Context, kind string, params map[string]string) (json.RawMessage, error) {
	select {
	case <-c.gate:
	case <-ctx.Done():
	}
	return nil, context.Canceled
}

func (c *parkedClient) TestConnection(ctx context.Context) error { return nil }

var _ clients.Client = (*parkedClient)(nil)

func testViews() []models.ViewDefinition {
	return []models.ViewDefinition{
		{ID: "dashboard", Streams: []string{"iss-position", "conjunction-risk"}},
		{ID: "planetary", Streams: []string{"mars-ephemeris"}},
	}
}

// newTestManager builds a tab manager over a running orchestrator whose
// streams never complete a live fetch.
func newTestManager(t *testing.T) (*Manager, *orchestrator.Orchestrator, *events.Bus, *cache.ResponseCache) {
	t.Helper()

	bus := events.NewBus()
	respCache := cache.New(time.Minute)
	alertMgr := alerts.NewManager(bus)
	t.Cleanup(alertMgr.Close)

	limits := ratelimit.NewRegistry()
	limits.Register("sattrack", 1000)
	limits.Register("horizons", 1000)

	gate := make(chan struct{})
	t.Cleanup(func() { close(gate) })

	providerClients := map[string]clients.Client{
		"sattrack": &parkedClient{name: "sattrack", gate: gate},
		"horizons": &parkedClient{name: "horizons", gate: gate},
	}

	def := func(id, provider string) models.StreamDefinition {
		return models.StreamDefinition{
			ID:           id,
			Provider:     provider,
			Kind:         "positions",
			Priority:     models.PriorityHigh,
			PollInterval: time.Hour,
			MaxRetries:   1,
		}
	}
	defs := []models.StreamDefinition{
		def("iss-position", "sattrack"),
		def("conjunction-risk", "sattrack"),
		def("mars-ephemeris", "horizons"),
	}

	cfg := config.OrchestratorConfig{
		HealthCheckInterval: time.Hour,
		DataQualitySweep:    time.Hour,
		CacheTTL:            time.Minute,
		Breaker:             config.BreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute},
	}

	orch, err := orchestrator.New(cfg, defs, providerClients, bus, respCache, alertMgr, limits,
		orchestrator.RetryPolicy{StartupRetryDelay: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("orchestrator.New() failed: %v", err)
	}

	ready := make(chan struct{})
	bus.SubscribeOnce(events.TopicHealthCheckComplete, func(events.Event) {
		close(ready)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = orch.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("orchestrator did not shut down within 2s")
		}
	})

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("orchestrator startup health check never completed")
	}

	return NewManager(testViews(), orch, bus), orch, bus, respCache
}

// TestManager_SwitchToTabActivatesStreams verifies switching starts every
// stream the view needs and publishes a tab-switched event.
func TestManager_SwitchToTabActivatesStreams(t *testing.T) {
	m, orch, bus, _ := newTestManager(t)

	var mu sync.Mutex
	var switched []string
	bus.Subscribe(events.TopicTabSwitched, func(ev events.Event) {
		mu.Lock()
		switched = append(switched, ev.(events.TabSwitched).ViewID)
		mu.Unlock()
	})

	if err := m.SwitchToTab("dashboard"); err != nil {
		t.Fatalf("SwitchToTab() failed: %v", err)
	}

	if !orch.StreamActive("iss-position") || !orch.StreamActive("conjunction-risk") {
		t.Error("dashboard streams not active after switch")
	}
	if orch.StreamActive("mars-ephemeris") {
		t.Error("stream of an inactive view was started")
	}
	if got := m.ActiveView(); got != "dashboard" {
		t.Errorf("ActiveView() = %q, want dashboard", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(switched) != 1 || switched[0] != "dashboard" {
		t.Errorf("tab-switched events = %v, want [dashboard]", switched)
	}
}

// TestManager_SwitchToUnknownView verifies an unknown view id is rejected
// without disturbing the active view.
func TestManager_SwitchToUnknownView(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if err := m.SwitchToTab("dashboard"); err != nil {
		t.Fatalf("SwitchToTab(dashboard) failed: %v", err)
	}
	if err := m.SwitchToTab("galaxy-map"); err == nil {
		t.Error("SwitchToTab() of unknown view succeeded, want error")
	}
	if got := m.ActiveView(); got != "dashboard" {
		t.Errorf("ActiveView() = %q after failed switch, want dashboard", got)
	}
}

// TestManager_SwitchReplaysCachedData verifies activation re-publishes the
// cached payload, discounted, before any poll tick can run.
func TestManager_SwitchReplaysCachedData(t *testing.T) {
	m, _, bus, respCache := newTestManager(t)

	respCache.Put("mars-ephemeris", models.TelemetryPayload{
		Timestamp:  time.Now(),
		Source:     "horizons",
		Quality:    models.QualityGood,
		Confidence: 1.0,
	})

	var mu sync.Mutex
	var payloads []models.TelemetryPayload
	bus.Subscribe(events.UpdateTopic("mars-ephemeris"), func(ev events.Event) {
		mu.Lock()
		payloads = append(payloads, ev.(events.StreamUpdate).Payload)
		mu.Unlock()
	})

	if err := m.SwitchToTab("planetary"); err != nil {
		t.Fatalf("SwitchToTab() failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(payloads) != 1 {
		t.Fatalf("%d updates after switch, want exactly the replayed one", len(payloads))
	}
	if payloads[0].Quality != models.QualityPoor {
		t.Errorf("replayed quality = %q, want %q", payloads[0].Quality, models.QualityPoor)
	}
	if payloads[0].Confidence != cache.ConfidenceDiscount {
		t.Errorf("replayed confidence = %v, want %v", payloads[0].Confidence, cache.ConfidenceDiscount)
	}
}

// TestManager_SwitchKeepsPreviousStreamsRunning verifies switching views
// never stops the previous view's streams.
func TestManager_SwitchKeepsPreviousStreamsRunning(t *testing.T) {
	m, orch, _, _ := newTestManager(t)

	if err := m.SwitchToTab("dashboard"); err != nil {
		t.Fatalf("SwitchToTab(dashboard) failed: %v", err)
	}
	if err := m.SwitchToTab("planetary"); err != nil {
		t.Fatalf("SwitchToTab(planetary) failed: %v", err)
	}

	if !orch.StreamActive("iss-position") {
		t.Error("previous view's stream stopped by a tab switch")
	}
	if !orch.StreamActive("mars-ephemeris") {
		t.Error("new view's stream not active")
	}
}

// TestManager_ShouldSurface verifies the alert propagation rules: anything
// above info always surfaces; info surfaces only for the active view's
// streams or the system source.
func TestManager_ShouldSurface(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if err := m.SwitchToTab("dashboard"); err != nil {
		t.Fatalf("SwitchToTab() failed: %v", err)
	}

	cases := []struct {
		name  string
		alert models.Alert
		want  bool
	}{
		{"warning from background stream", models.Alert{Level: models.AlertWarning, Source: "mars-ephemeris"}, true},
		{"critical from background stream", models.Alert{Level: models.AlertCritical, Source: "mars-ephemeris"}, true},
		{"emergency from system", models.Alert{Level: models.AlertEmergency, Source: alerts.SourceSystem}, true},
		{"info from active view stream", models.Alert{Level: models.AlertInfo, Source: "iss-position"}, true},
		{"info from system", models.Alert{Level: models.AlertInfo, Source: alerts.SourceSystem}, true},
		{"info from background stream", models.Alert{Level: models.AlertInfo, Source: "mars-ephemeris"}, false},
	}

	for _, tc := range cases {
		if got := m.ShouldSurface(tc.alert); got != tc.want {
			t.Errorf("%s: ShouldSurface() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// TestManager_ShouldSurfaceNoActiveView verifies stream-scoped info alerts
// are suppressed before any view has been activated.
func TestManager_ShouldSurfaceNoActiveView(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if m.ShouldSurface(models.Alert{Level: models.AlertInfo, Source: "iss-position"}) {
		t.Error("info alert surfaced with no active view")
	}
	if !m.ShouldSurface(models.Alert{Level: models.AlertWarning, Source: "iss-position"}) {
		t.Error("warning suppressed with no active view")
	}
}

// TestManager_CleanupStopsOnlyOwnedStreams verifies Cleanup stops streams
// the manager started but leaves externally started streams running.
func TestManager_CleanupStopsOnlyOwnedStreams(t *testing.T) {
	m, orch, _, _ := newTestManager(t)

	// mars-ephemeris is started outside the manager.
	if err := orch.StartStream("mars-ephemeris"); err != nil {
		t.Fatalf("StartStream() failed: %v", err)
	}
	if err := m.SwitchToTab("dashboard"); err != nil {
		t.Fatalf("SwitchToTab() failed: %v", err)
	}

	m.Cleanup()

	if orch.StreamActive("iss-position") || orch.StreamActive("conjunction-risk") {
		t.Error("manager-started streams still active after Cleanup")
	}
	if !orch.StreamActive("mars-ephemeris") {
		t.Error("externally started stream stopped by Cleanup")
	}
	if got := m.ActiveView(); got != "" {
		t.Errorf("ActiveView() = %q after Cleanup, want empty", got)
	}
}

// TestManager_Views verifies the registered definitions are returned.
func TestManager_Views(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	views := m.Views()
	if len(views) != 2 {
		t.Fatalf("Views() returned %d definitions, want 2", len(views))
	}
	seen := map[string]bool{}
	for _, v := range views {
		seen[v.ID] = true
	}
	if !seen["dashboard"] || !seen["planetary"] {
		t.Errorf("Views() = %v, want dashboard and planetary", seen)
	}
}
