// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// TestInit_JSONOutput verifies configured output and level filtering.
func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Debug().Msg("too quiet to appear")
	Info().Str("stream", "iss-position").Msg("stream started")

	out := buf.String()
	if strings.Contains(out, "too quiet to appear") {
		t.Error("debug message logged at info level")
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("output is not one JSON entry: %v\n%s", err, out)
	}
	if entry["message"] != "stream started" {
		t.Errorf("message = %v, want \"stream started\"", entry["message"])
	}
	if entry["stream"] != "iss-position" {
		t.Errorf("stream field = %v, want iss-position", entry["stream"])
	}
}

// TestParseLevel verifies level string parsing including the fallback.
func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// TestSlogHandler_RoutesThroughZerolog verifies slog records land in the
// zerolog output with their attributes.
func TestSlogHandler_RoutesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	logger := NewSlogLogger()
	logger.Info("supervisor event", slog.String("service", "polling-layer"), slog.Int("restarts", 2))

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("output is not one JSON entry: %v\n%s", err, buf.String())
	}
	if entry["message"] != "supervisor event" {
		t.Errorf("message = %v, want \"supervisor event\"", entry["message"])
	}
	if entry["service"] != "polling-layer" {
		t.Errorf("service attr = %v, want polling-layer", entry["service"])
	}
	if entry["restarts"] != float64(2) {
		t.Errorf("restarts attr = %v, want 2", entry["restarts"])
	}
}

// TestSlogHandler_WithGroup verifies grouped attribute keys are prefixed.
func TestSlogHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	logger := NewSlogLogger().WithGroup("suture")
	logger.Warn("service backoff", slog.String("name", "orchestrator"))

	if !strings.Contains(buf.String(), `"suture.name":"orchestrator"`) {
		t.Errorf("grouped key missing from output: %s", buf.String())
	}
}
