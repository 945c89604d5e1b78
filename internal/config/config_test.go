// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stellarview/stellarview/internal/models"
)

// TestDefaultConfigIsValid verifies the built-in defaults pass validation,
// so the server starts with no file or environment at all.
func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}

	if cfg.Server.Port != 8442 {
		t.Errorf("default port = %d, want 8442", cfg.Server.Port)
	}
	if len(cfg.Streams) == 0 || len(cfg.Providers) == 0 || len(cfg.Views) == 0 {
		t.Error("defaults are missing the demo streams, providers or views")
	}
}

// TestLoad_FileOverridesDefaults verifies a YAML file pointed to by
// CONFIG_PATH wins over the built-in defaults.
func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: 9999\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want file override 9999", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want file override debug", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Orchestrator.Breaker.FailureThreshold != 5 {
		t.Errorf("breaker threshold = %d, want default 5", cfg.Orchestrator.Breaker.FailureThreshold)
	}
}

// TestLoad_EnvOverridesFile verifies environment variables outrank the file.
func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7777")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d, want env override 7777", cfg.Server.Port)
	}
}

// TestValidate_DuplicateProvider verifies duplicate provider names are
// rejected.
func TestValidate_DuplicateProvider(t *testing.T) {
	cfg := defaultConfig()
	cfg.Providers = append(cfg.Providers, cfg.Providers[0])

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate provider") {
		t.Errorf("Validate() = %v, want duplicate provider error", err)
	}
}

// TestValidate_StreamUnknownProvider verifies a stream referencing a
// nonexistent provider is rejected.
func TestValidate_StreamUnknownProvider(t *testing.T) {
	cfg := defaultConfig()
	cfg.Streams[0].Provider = "ghost"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("Validate() = %v, want unknown provider error", err)
	}
}

// TestValidate_ViewUnknownStream verifies a view referencing a nonexistent
// stream is rejected.
func TestValidate_ViewUnknownStream(t *testing.T) {
	cfg := defaultConfig()
	cfg.Views = append(cfg.Views, models.ViewDefinition{
		ID:      "broken",
		Streams: []string{"no-such-stream"},
	})

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "unknown stream") {
		t.Errorf("Validate() = %v, want unknown stream error", err)
	}
}

// TestValidate_DuplicateStreamID verifies duplicate stream ids are rejected.
func TestValidate_DuplicateStreamID(t *testing.T) {
	cfg := defaultConfig()
	cfg.Streams = append(cfg.Streams, cfg.Streams[0])

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate stream") {
		t.Errorf("Validate() = %v, want duplicate stream error", err)
	}
}

// TestValidate_NonPositivePollInterval verifies a zero poll interval is
// rejected before it can stall a ticker.
func TestValidate_NonPositivePollInterval(t *testing.T) {
	cfg := defaultConfig()
	cfg.Streams[0].PollInterval = 0

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted a zero poll interval")
	}
}

// TestValidate_AssistantEnabledNeedsURL verifies the assistant proxy cannot
// be enabled without an upstream.
func TestValidate_AssistantEnabledNeedsURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Assistant.Enabled = true
	cfg.Assistant.URL = ""

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "assistant") {
		t.Errorf("Validate() = %v, want assistant URL error", err)
	}
}

// TestValidate_BadLogLevelRejected verifies struct-tag validation catches an
// unsupported log level.
func TestValidate_BadLogLevelRejected(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "verbose"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted log level \"verbose\"")
	}
}

// TestDurationFieldsSurviveFileLoad verifies duration strings in YAML
// unmarshal into time.Duration fields.
func TestDurationFieldsSurviveFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "orchestrator:\n  cache_ttl: 90s\n  breaker:\n    reset_timeout: 45s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Orchestrator.CacheTTL != 90*time.Second {
		t.Errorf("cache TTL = %v, want 90s", cfg.Orchestrator.CacheTTL)
	}
	if cfg.Orchestrator.Breaker.ResetTimeout != 45*time.Second {
		t.Errorf("breaker reset timeout = %v, want 45s", cfg.Orchestrator.Breaker.ResetTimeout)
	}
}
