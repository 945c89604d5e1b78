// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/stellarview/stellarview/internal/cache"
	"github.com/stellarview/stellarview/internal/clients"
	"github.com/stellarview/stellarview/internal/events"
	"github.com/stellarview/stellarview/internal/logging"
	"github.com/stellarview/stellarview/internal/metrics"
	"github.com/stellarview/stellarview/internal/models"
)

// minErrorRateSamples is the number of completed polls required before the
// error-rate threshold is evaluated, so a single early failure does not
// register as a 100% error rate.
const minErrorRateSamples = 5

// runStream is one stream's polling loop. Poll ticks for a single stream
// are strictly sequential: the fetch runs inline on this goroutine, so a
// slow fetch delays subsequent ticks instead of overlapping them, and the
// in-flight guard drops any tick that still manages to arrive while a
// fetch is running.
func (o *Orchestrator) runStream(ctx context.Context, st *streamState) {
	defer o.wg.Done()

	ticker := time.NewTicker(st.def.PollInterval)
	defer ticker.Stop()

	// Immediate first poll so a newly started stream has data without
	// waiting a full interval.
	o.pollOnce(ctx, st)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.mu.Lock()
			busy := st.inFlight
			if !busy {
				st.inFlight = true
			}
			st.mu.Unlock()

			if busy {
				metrics.PollTicksSkipped.WithLabelValues(st.def.ID).Inc()
				logging.Debug().Str("stream", st.def.ID).Msg("tick skipped, previous fetch still in flight")
				continue
			}
			o.pollOnce(ctx, st)
		}
	}
}

// pollOnce executes one poll tick for a stream:
//
//	breaker gate -> rate-limit token -> fetch -> cache+publish on success,
//	failure accounting + cached fallback on error.
//
// All errors are absorbed here; nothing propagates past the tick boundary.
func (o *Orchestrator) pollOnce(ctx context.Context, st *streamState) {
	defer func() {
		st.mu.Lock()
		st.inFlight = false
		st.mu.Unlock()
	}()

	done, err := st.breaker.Allow()
	if err != nil {
		// Circuit open: no live attempt until the reset timeout elapses.
		o.serveFallback(st, "circuit open")
		return
	}

	if err := st.gate.Acquire(ctx); err != nil {
		// Context canceled while waiting for a token; the stream is
		// stopping, so skip publishing entirely.
		done(false)
		return
	}

	t0 := time.Now()
	fctx, cancel := context.WithTimeout(ctx, clients.FetchTimeout)
	raw, err := st.client.Fetch(fctx, st.def.Kind, st.def.Params)
	cancel()
	responseTime := time.Since(t0)

	// A stream stopped mid-fetch must not act on the result.
	if !st.isActive() {
		done(err == nil)
		return
	}

	o.recordAPIOutcome(st.def.Provider, err == nil, responseTime)

	st.mu.Lock()
	st.polls++
	if err != nil {
		st.pollFailures++
	}
	st.mu.Unlock()

	if err != nil {
		done(false)
		o.handleFetchFailure(st, err)
		return
	}
	done(true)

	metrics.PollDuration.WithLabelValues(st.def.ID, st.def.Provider).Observe(responseTime.Seconds())

	if limit := st.def.AlertThresholds.MaxResponseTime; limit > 0 && responseTime > limit {
		o.alerts.Raise(models.AlertWarning, st.def.ID,
			fmt.Sprintf("response time %s exceeded threshold %s", responseTime.Round(time.Millisecond), limit), true)
	}

	payload := models.TelemetryPayload{
		Timestamp:  time.Now(),
		Source:     st.client.Name(),
		DataType:   st.def.Kind,
		Payload:    raw,
		Quality:    models.QualityGood,
		Confidence: 1.0,
	}

	o.cache.Put(st.def.ID, payload)

	st.mu.Lock()
	st.errorCount = 0
	st.lastDataReceivedAt = payload.Timestamp
	st.mu.Unlock()

	o.bus.Publish(events.StreamUpdate{StreamID: st.def.ID, Payload: payload})
	o.bus.Publish(events.TelemetryUpdate{
		StreamID:     st.def.ID,
		Payload:      payload,
		ResponseTime: responseTime,
	})
}

// handleFetchFailure converts one failed fetch into events and alerts and
// serves cached data as a fallback. Retries happen on the next scheduled
// tick; there is no immediate retry storm.
func (o *Orchestrator) handleFetchFailure(st *streamState, fetchErr error) {
	st.mu.Lock()
	st.errorCount++
	errorCount := st.errorCount
	polls := st.polls
	failures := st.pollFailures
	st.mu.Unlock()

	metrics.PollErrors.WithLabelValues(st.def.ID, st.def.Provider).Inc()
	logging.Err(fetchErr).
		Str("stream", st.def.ID).
		Int("error_count", errorCount).
		Msg("poll fetch failed")

	o.bus.Publish(events.StreamError{
		StreamID:  st.def.ID,
		Err:       fetchErr.Error(),
		Retryable: o.retry.Retryable(errorCount, st.def.MaxRetries),
	})

	level := models.AlertWarning
	if st.def.Priority == models.PriorityCritical {
		level = models.AlertCritical
	}
	o.alerts.Raise(level, st.def.ID,
		fmt.Sprintf("fetch failed: %v", fetchErr), true)

	if limit := st.def.AlertThresholds.MaxErrorRate; limit > 0 && polls >= minErrorRateSamples {
		if rate := float64(failures) / float64(polls); rate > limit {
			o.alerts.Raise(models.AlertWarning, st.def.ID,
				fmt.Sprintf("error rate %.2f exceeded threshold %.2f over %d polls", rate, limit, polls), true)
		}
	}

	o.serveFallback(st, "fetch failed")
}

// serveFallback publishes the stream's cached payload at reduced
// confidence, or raises a no-data alert when the cache has nothing fresh
// enough. Confidence is monotonically non-increasing as data degrades from
// live to cached to unavailable.
func (o *Orchestrator) serveFallback(st *streamState, reason string) {
	payload, ok := o.cache.Get(st.def.ID)
	if !ok {
		o.alerts.Raise(models.AlertWarning, st.def.ID,
			fmt.Sprintf("no data available (%s, cache empty)", reason), true)
		return
	}

	o.bus.Publish(events.StreamUpdate{
		StreamID: st.def.ID,
		Payload:  cache.Discount(payload),
	})
}
