// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package orchestrator is the real-time data orchestration core. It owns
// the set of named telemetry streams, drives fetch-on-interval polling
// against the rate-limited external APIs, wires the circuit breakers and
// response cache together, probes upstream health, and emits typed events
// consumed by the dashboard layers.
//
// Failure containment: every per-stream error is caught at the poll-tick
// boundary and converted into events and alerts. One stream's failure can
// never take down another stream or the orchestrator itself; only total
// initialization failure escalates to the critical-failure event.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stellarview/stellarview/internal/alerts"
	"github.com/stellarview/stellarview/internal/breaker"
	"github.com/stellarview/stellarview/internal/cache"
	"github.com/stellarview/stellarview/internal/clients"
	"github.com/stellarview/stellarview/internal/config"
	"github.com/stellarview/stellarview/internal/events"
	"github.com/stellarview/stellarview/internal/logging"
	"github.com/stellarview/stellarview/internal/metrics"
	"github.com/stellarview/stellarview/internal/models"
	"github.com/stellarview/stellarview/internal/ratelimit"
)

// streamState is the mutable runtime state owned one-per-stream. It is
// mutated exclusively by that stream's poll goroutine and the orchestrator's
// start/stop paths; UI code never touches it directly.
type streamState struct {
	def     models.StreamDefinition
	client  clients.Client
	gate    *ratelimit.Gate
	breaker *breaker.Breaker

	mu                 sync.Mutex
	active             bool
	inFlight           bool
	errorCount         int
	polls              int64
	pollFailures       int64
	startedAt          time.Time
	lastDataReceivedAt time.Time
	cancel             context.CancelFunc
}

func (st *streamState) isActive() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.active
}

// apiState tracks observed health per upstream provider, shared by the
// health-check loop and the per-stream poll outcomes.
type apiState struct {
	client              clients.Client
	isOnline            bool
	responseTime        time.Duration
	requests            int64
	failures            int64
	consecutiveFailures int
	lastSuccessAt       time.Time
}

// Orchestrator owns all stream and provider state. Construct with New,
// then Run inside a supervised goroutine.
type Orchestrator struct {
	bus    *events.Bus
	cache  *cache.ResponseCache
	alerts *alerts.Manager
	limits *ratelimit.Registry
	cfg    config.OrchestratorConfig
	retry  RetryPolicy

	mu        sync.RWMutex
	streams   map[string]*streamState
	apis      map[string]*apiState
	status    models.SystemStatus
	startedAt time.Time
	runCtx    context.Context
	wg        sync.WaitGroup
}

// New wires an orchestrator from its collaborators and registers every
// configured stream. Streams are registered inactive; the tab manager (or
// StartStream) activates them on demand.
func New(
	cfg config.OrchestratorConfig,
	streamDefs []models.StreamDefinition,
	providerClients map[string]clients.Client,
	bus *events.Bus,
	respCache *cache.ResponseCache,
	alertMgr *alerts.Manager,
	limits *ratelimit.Registry,
	retry RetryPolicy,
) (*Orchestrator, error) {
	o := &Orchestrator{
		bus:     bus,
		cache:   respCache,
		alerts:  alertMgr,
		limits:  limits,
		cfg:     cfg,
		retry:   retry,
		streams: make(map[string]*streamState, len(streamDefs)),
		apis:    make(map[string]*apiState, len(providerClients)),
		status:  models.StatusOffline,
	}

	for name, c := range providerClients {
		o.apis[name] = &apiState{client: c}
	}

	for _, def := range streamDefs {
		c, ok := providerClients[def.Provider]
		if !ok {
			return nil, fmt.Errorf("stream %q: no client for provider %q", def.ID, def.Provider)
		}
		gate := limits.Gate(def.Provider)
		if gate == nil {
			return nil, fmt.Errorf("stream %q: no rate limit gate for provider %q", def.ID, def.Provider)
		}
		o.streams[def.ID] = &streamState{
			def:    def,
			client: c,
			gate:   gate,
			breaker: breaker.New(breaker.Config{
				Name:             def.ID,
				FailureThreshold: cfg.Breaker.FailureThreshold,
				ResetTimeout:     cfg.Breaker.ResetTimeout,
				MonitoringWindow: cfg.Breaker.MonitoringWindow,
			}),
		}
	}

	return o, nil
}

// Run starts the orchestration loops and blocks until ctx is canceled.
// It performs an initial connectivity probe: if no upstream is reachable
// at all, initialization has failed system-wide and the critical-failure
// escalation fires, but Run keeps going so the health loop can recover
// once a provider comes back.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	o.runCtx = ctx
	o.startedAt = time.Now()
	o.mu.Unlock()

	o.runHealthCheck(ctx)

	o.mu.RLock()
	status := o.status
	o.mu.RUnlock()
	if status == models.StatusCritical {
		o.escalateCriticalFailure(fmt.Errorf("no upstream API reachable at startup"))
	}

	o.wg.Add(2)
	go o.healthCheckLoop(ctx)
	go o.dataQualityLoop(ctx)

	logging.Info().
		Int("streams", len(o.streams)).
		Int("providers", len(o.apis)).
		Msg("orchestrator running")

	<-ctx.Done()

	o.StopAllStreams()
	o.wg.Wait()
	return ctx.Err()
}

// StartStream activates a stream's polling loop. Starting an active stream
// is a no-op. If startup fails, one delayed retry is scheduled before the
// failure is escalated to a critical alert.
func (o *Orchestrator) StartStream(id string) error {
	if err := o.startStream(id); err != nil {
		logging.Err(err).Str("stream", id).Msg("stream start failed, scheduling retry")
		o.scheduleStartRetry(id)
		return err
	}
	return nil
}

func (o *Orchestrator) startStream(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	st, ok := o.streams[id]
	if !ok {
		return fmt.Errorf("unknown stream %q", id)
	}
	if o.runCtx == nil {
		return fmt.Errorf("orchestrator not running, cannot start stream %q", id)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.active {
		return nil
	}

	ctx, cancel := context.WithCancel(o.runCtx)
	st.active = true
	st.cancel = cancel
	st.errorCount = 0
	st.polls = 0
	st.pollFailures = 0
	st.startedAt = time.Now()

	o.wg.Add(1)
	go o.runStream(ctx, st)

	metrics.StreamsActive.Inc()
	logging.Info().
		Str("stream", id).
		Dur("interval", st.def.PollInterval).
		Str("priority", string(st.def.Priority)).
		Msg("stream started")
	return nil
}

// scheduleStartRetry arms the single delayed retry for a failed stream
// start. If the retry also fails, a critical alert is raised and the
// stream stays inactive until asked for again.
func (o *Orchestrator) scheduleStartRetry(id string) {
	time.AfterFunc(o.retry.StartupRetryDelay, func() {
		if err := o.startStream(id); err != nil {
			o.alerts.Raise(models.AlertCritical, id,
				fmt.Sprintf("stream %s failed to start after retry: %v", id, err), false)
		}
	})
}

// StopStream deactivates a stream. Its in-flight fetch, if any, is allowed
// to complete but the result is discarded.
func (o *Orchestrator) StopStream(id string) {
	o.mu.RLock()
	st, ok := o.streams[id]
	o.mu.RUnlock()
	if !ok {
		return
	}

	st.mu.Lock()
	if !st.active {
		st.mu.Unlock()
		return
	}
	st.active = false
	cancel := st.cancel
	st.cancel = nil
	st.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	metrics.StreamsActive.Dec()
	logging.Info().Str("stream", id).Msg("stream stopped")
}

// StopAllStreams deactivates every stream. Part of the public query
// surface; also invoked on shutdown.
func (o *Orchestrator) StopAllStreams() {
	o.mu.RLock()
	ids := make([]string, 0, len(o.streams))
	for id := range o.streams {
		ids = append(ids, id)
	}
	o.mu.RUnlock()

	for _, id := range ids {
		o.StopStream(id)
	}
}

// StreamActive reports whether a stream's polling loop is running.
func (o *Orchestrator) StreamActive(id string) bool {
	o.mu.RLock()
	st, ok := o.streams[id]
	o.mu.RUnlock()
	return ok && st.isActive()
}

// StreamIDs returns the ids of all registered streams.
func (o *Orchestrator) StreamIDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ids := make([]string, 0, len(o.streams))
	for id := range o.streams {
		ids = append(ids, id)
	}
	return ids
}

// ReplayCached re-publishes the stream's latest cached payload, discounted,
// on its update topic. Used by the tab manager so a freshly activated view
// has data before the next poll tick. Returns false on a cache miss.
func (o *Orchestrator) ReplayCached(id string) bool {
	payload, ok := o.cache.Get(id)
	if !ok {
		return false
	}
	o.bus.Publish(events.StreamUpdate{StreamID: id, Payload: cache.Discount(payload)})
	return true
}

// escalateCriticalFailure forces the aggregate status to critical, raises
// an emergency alert and publishes the distinguished critical-failure event
// so consumers can present a blocking error state.
func (o *Orchestrator) escalateCriticalFailure(cause error) {
	o.mu.Lock()
	o.status = models.StatusCritical
	o.mu.Unlock()

	logging.Error().Err(cause).Msg("system initialization failed")
	o.alerts.Raise(models.AlertEmergency, alerts.SourceSystem,
		fmt.Sprintf("system initialization failed: %v", cause), false)
	o.bus.Publish(events.CriticalFailure{
		Err:       cause.Error(),
		Timestamp: time.Now(),
		Snapshot:  o.GetSystemHealth(),
	})
}
