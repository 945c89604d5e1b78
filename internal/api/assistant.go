// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/stellarview/stellarview/internal/config"
	"github.com/stellarview/stellarview/internal/logging"
	"github.com/stellarview/stellarview/internal/ratelimit"
)

// assistantTimeout bounds one round trip to the hosted model. Generation
// is slow compared to telemetry fetches, so this is deliberately long.
const assistantTimeout = 60 * time.Second

// AssistantProxy forwards natural-language dashboard queries to a hosted
// LLM chat-completion endpoint. It is stateless: no conversation history
// is kept server-side, each request stands alone. The proxy carries its
// own rate gate because upstream quota is billed per request.
type AssistantProxy struct {
	cfg        config.AssistantConfig
	gate       *ratelimit.Gate
	httpClient *http.Client
}

// NewAssistantProxy builds the proxy from configuration. Returns nil when
// the assistant is disabled, which handlers treat as "feature off".
func NewAssistantProxy(cfg config.AssistantConfig) *AssistantProxy {
	if !cfg.Enabled {
		return nil
	}
	return &AssistantProxy{
		cfg:  cfg,
		gate: ratelimit.NewGate("assistant", cfg.SustainedRate),
		httpClient: &http.Client{
			Timeout: assistantTimeout,
		},
	}
}

type assistantRequest struct {
	Message string `json:"message"`
}

type assistantReply struct {
	Reply string `json:"reply"`
}

// Upstream chat-completion wire types, the common denominator across
// hosted model APIs.
type chatRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// query performs one rate-gated round trip to the upstream model.
func (p *AssistantProxy) query(r *http.Request, message string) (string, error) {
	if err := p.gate.Acquire(r.Context()); err != nil {
		return "", fmt.Errorf("rate gate: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:    p.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: message}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal upstream request: %w", err)
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read upstream response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode upstream response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("upstream returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Assistant handles POST /api/v1/assistant.
func (h *Handler) Assistant(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		respondError(w, http.StatusServiceUnavailable, "ASSISTANT_DISABLED", "assistant is not configured")
		return
	}

	var req assistantRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "message is required")
		return
	}

	reply, err := h.assistant.query(r, req.Message)
	if err != nil {
		logging.Error().Err(err).Msg("assistant query failed")
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "assistant request failed")
		return
	}

	respondJSON(w, http.StatusOK, assistantReply{Reply: reply})
}
