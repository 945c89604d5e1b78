// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/stellarview/stellarview/internal/clients"
	"github.com/stellarview/stellarview/internal/events"
	"github.com/stellarview/stellarview/internal/logging"
	"github.com/stellarview/stellarview/internal/metrics"
	"github.com/stellarview/stellarview/internal/models"
)

// healthCheckLoop probes every upstream provider at a coarse interval and
// publishes the recomputed aggregate snapshot.
func (o *Orchestrator) healthCheckLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.runHealthCheck(ctx)
		}
	}
}

// runHealthCheck probes each distinct upstream API once with a lightweight
// call, updates per-API status and recomputes the aggregate:
// all online -> operational, at least one -> degraded, none -> critical.
func (o *Orchestrator) runHealthCheck(ctx context.Context) {
	o.mu.RLock()
	apis := make(map[string]*apiState, len(o.apis))
	for name, st := range o.apis {
		apis[name] = st
	}
	o.mu.RUnlock()

	online := 0
	for name, st := range apis {
		t0 := time.Now()
		pctx, cancel := context.WithTimeout(ctx, clients.FetchTimeout)
		err := st.client.TestConnection(pctx)
		cancel()
		elapsed := time.Since(t0)

		metrics.HealthCheckDuration.WithLabelValues(name).Observe(elapsed.Seconds())

		o.mu.Lock()
		st.responseTime = elapsed
		if err != nil {
			st.isOnline = false
			st.consecutiveFailures++
			metrics.UpstreamOnline.WithLabelValues(name).Set(0)
			logging.Warn().Err(err).Str("provider", name).Msg("upstream health probe failed")
		} else {
			st.isOnline = true
			st.consecutiveFailures = 0
			st.lastSuccessAt = time.Now()
			metrics.UpstreamOnline.WithLabelValues(name).Set(1)
			online++
		}
		o.mu.Unlock()
	}

	status := models.StatusCritical
	switch {
	case online == len(apis) && len(apis) > 0:
		status = models.StatusOperational
	case online > 0:
		status = models.StatusDegraded
	}

	o.mu.Lock()
	o.status = status
	o.mu.Unlock()

	o.bus.Publish(events.HealthCheckComplete{Snapshot: o.GetSystemHealth()})
}

// recordAPIOutcome folds one poll result into the provider's running error
// rate. Called from the poll path for every completed fetch.
func (o *Orchestrator) recordAPIOutcome(provider string, success bool, responseTime time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	st, ok := o.apis[provider]
	if !ok {
		return
	}
	st.requests++
	if success {
		st.lastSuccessAt = time.Now()
		st.responseTime = responseTime
	} else {
		st.failures++
	}
}

// dataQualityLoop periodically checks every active stream for staleness:
// data older than the stream's MaxDataAge threshold raises a warning alert
// even while the circuit breaker is still closed.
func (o *Orchestrator) dataQualityLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.cfg.DataQualitySweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.runDataQualitySweep()
		}
	}
}

func (o *Orchestrator) runDataQualitySweep() {
	now := time.Now()

	o.mu.RLock()
	states := make([]*streamState, 0, len(o.streams))
	for _, st := range o.streams {
		states = append(states, st)
	}
	o.mu.RUnlock()

	for _, st := range states {
		st.mu.Lock()
		active := st.active
		last := st.lastDataReceivedAt
		started := st.startedAt
		st.mu.Unlock()

		if !active {
			continue
		}
		maxAge := st.def.AlertThresholds.MaxDataAge
		if maxAge <= 0 {
			continue
		}
		// A stream that has never delivered counts from its start time.
		if last.IsZero() {
			last = started
		}
		if age := now.Sub(last); age > maxAge {
			o.alerts.Raise(models.AlertWarning, st.def.ID,
				fmt.Sprintf("data is stale: last update %s ago exceeds threshold %s", age.Round(time.Second), maxAge), true)
		}
	}
}

// GetSystemHealth assembles the aggregate snapshot synchronously from
// current state. It never fails; stream-level problems surface in the
// snapshot itself, not as errors.
func (o *Orchestrator) GetSystemHealth() models.SystemHealthSnapshot {
	o.mu.RLock()

	snapshot := models.SystemHealthSnapshot{
		Status:      o.status,
		GeneratedAt: time.Now(),
		APIs:        make(map[string]models.APIStatus, len(o.apis)),
		Streams:     make(map[string]models.StreamStatus, len(o.streams)),
	}
	if !o.startedAt.IsZero() {
		snapshot.Uptime = time.Since(o.startedAt)
	}

	for name, st := range o.apis {
		errorRate := 0.0
		if st.requests > 0 {
			errorRate = float64(st.failures) / float64(st.requests)
		}
		snapshot.APIs[name] = models.APIStatus{
			Name:                name,
			IsOnline:            st.isOnline,
			ResponseTime:        st.responseTime,
			ErrorRate:           errorRate,
			ConsecutiveFailures: st.consecutiveFailures,
			LastSuccessAt:       st.lastSuccessAt,
		}
	}

	states := make([]*streamState, 0, len(o.streams))
	for _, st := range o.streams {
		states = append(states, st)
	}
	o.mu.RUnlock()

	for _, st := range states {
		st.mu.Lock()
		snapshot.Streams[st.def.ID] = models.StreamStatus{
			ID:                 st.def.ID,
			Priority:           st.def.Priority,
			Active:             st.active,
			BreakerState:       st.breaker.State(),
			ErrorCount:         st.errorCount,
			LastDataReceivedAt: st.lastDataReceivedAt,
			CacheFresh:         o.cache.Fresh(st.def.ID),
		}
		st.mu.Unlock()
	}

	snapshot.ActiveAlerts = o.alerts.Active()
	return snapshot
}
