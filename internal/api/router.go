// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package api provides HTTP routing for the dashboard backend using the
// Chi router with the go-chi middleware ecosystem.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stellarview/stellarview/internal/metrics"
)

// Router assembles the handler set and middleware into an http.Handler.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a Router from the handler set and middleware factory.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	return &Router{handler: handler, middleware: mw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order. CORS is global
	// so OPTIONS preflight requests are handled everywhere.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Health endpoints get permissive rate limits so monitoring tools can
	// poll frequently.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Use(SecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
	})

	// Core API endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(prometheusMetrics)

		r.Get("/alerts", router.handler.Alerts)
		r.Post("/alerts/{id}/acknowledge", router.handler.AcknowledgeAlert)

		r.Get("/streams", router.handler.Streams)
		r.Post("/streams/{id}/start", router.handler.StartStream)
		r.Post("/streams/{id}/stop", router.handler.StopStream)
		r.Post("/streams/stop", router.handler.StopAllStreams)

		r.Get("/views", router.handler.Views)
		r.Post("/tabs/{viewID}", router.handler.SwitchTab)

		r.With(router.middleware.RateLimitWebSocket()).Get("/ws", router.handler.WebSocket)
		r.With(router.middleware.RateLimitAssistant()).Post("/assistant", router.handler.Assistant)
	})

	// Prometheus scrape endpoint.
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// prometheusMetrics records request duration per route pattern and status.
func prometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = r.URL.Path
		}
		metrics.APIRequestDuration.WithLabelValues(
			r.Method,
			pattern,
			strconv.Itoa(ww.Status()),
		).Observe(time.Since(start).Seconds())
	})
}
