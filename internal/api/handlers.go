// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/stellarview/stellarview/internal/alerts"
	"github.com/stellarview/stellarview/internal/logging"
	"github.com/stellarview/stellarview/internal/orchestrator"
	"github.com/stellarview/stellarview/internal/tabs"
	ws "github.com/stellarview/stellarview/internal/websocket"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	orch      *orchestrator.Orchestrator
	alerts    *alerts.Manager
	tabs      *tabs.Manager
	wsHub     *ws.Hub
	assistant *AssistantProxy
	upgrader  websocket.Upgrader
}

// NewHandler creates the handler set. assistant may be nil when the chat
// proxy is disabled.
func NewHandler(orch *orchestrator.Orchestrator, alertMgr *alerts.Manager, tabMgr *tabs.Manager, hub *ws.Hub, assistant *AssistantProxy) *Handler {
	return &Handler{
		orch:      orch,
		alerts:    alertMgr,
		tabs:      tabMgr,
		wsHub:     hub,
		assistant: assistant,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement happens in the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// apiResponse is the envelope for all JSON responses.
type apiResponse struct {
	Status    string      `json:"status"`
	Data      interface{} `json:"data,omitempty"`
	Error     *apiError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiResponse{
		Status:    "ok",
		Data:      data,
		Timestamp: time.Now(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiResponse{
		Status:    "error",
		Error:     &apiError{Code: code, Message: message},
		Timestamp: time.Now(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode JSON error response")
	}
}

// Health returns the aggregate system health snapshot.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orch.GetSystemHealth())
}

// HealthLive is a trivial liveness probe.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"state": "alive"})
}

// Alerts returns active alerts, or the full history with ?history=true.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("history") == "true" {
		respondJSON(w, http.StatusOK, h.alerts.History())
		return
	}
	respondJSON(w, http.StatusOK, h.alerts.Active())
}

// AcknowledgeAlert marks one alert as acknowledged.
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.alerts.Acknowledge(id) {
		respondError(w, http.StatusNotFound, "ALERT_NOT_FOUND", "no alert with that id")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// streamInfo is the per-stream view returned by the Streams endpoint.
type streamInfo struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// Streams lists all configured streams and whether each is running.
func (h *Handler) Streams(w http.ResponseWriter, r *http.Request) {
	ids := h.orch.StreamIDs()
	out := make([]streamInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, streamInfo{ID: id, Active: h.orch.StreamActive(id)})
	}
	respondJSON(w, http.StatusOK, out)
}

// StartStream activates one stream by id.
func (h *Handler) StartStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.orch.StartStream(id); err != nil {
		respondError(w, http.StatusNotFound, "STREAM_NOT_FOUND", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "state": "active"})
}

// StopStream deactivates one stream by id.
func (h *Handler) StopStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.orch.StopStream(id)
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "state": "stopped"})
}

// StopAllStreams deactivates every stream.
func (h *Handler) StopAllStreams(w http.ResponseWriter, r *http.Request) {
	h.orch.StopAllStreams()
	respondJSON(w, http.StatusOK, map[string]string{"state": "stopped"})
}

// Views lists the configured dashboard views and the active one.
func (h *Handler) Views(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"views":  h.tabs.Views(),
		"active": h.tabs.ActiveView(),
	})
}

// SwitchTab activates the named view, starting its streams and replaying
// cached payloads so the view renders before the next poll tick.
func (h *Handler) SwitchTab(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")
	if err := h.tabs.SwitchToTab(viewID); err != nil {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"active": viewID})
}

// WebSocket upgrades the connection and registers the client with the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
