// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

// Package config holds all application configuration, loaded with Koanf v2
// from layered sources (highest priority wins):
//
//  1. Environment variables
//  2. Optional YAML config file (config.yaml)
//  3. Built-in defaults
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"time"

	"github.com/stellarview/stellarview/internal/models"
)

// Config is the root configuration for the Stellarview server.
type Config struct {
	Server       ServerConfig              `koanf:"server"`
	Logging      LoggingConfig             `koanf:"logging"`
	Providers    []ProviderConfig          `koanf:"providers" validate:"required,min=1,dive"`
	Streams      []models.StreamDefinition `koanf:"streams" validate:"required,min=1,dive"`
	Views        []models.ViewDefinition   `koanf:"views" validate:"dive"`
	Orchestrator OrchestratorConfig        `koanf:"orchestrator"`
	Alerts       AlertsConfig              `koanf:"alerts"`
	Assistant    AssistantConfig           `koanf:"assistant"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ProviderConfig describes one upstream telemetry provider and its quota.
type ProviderConfig struct {
	// Name is the provider key referenced by stream definitions.
	Name string `koanf:"name" validate:"required"`
	// Type selects the client implementation: "sattrack" or "horizons".
	Type string `koanf:"type" validate:"required,oneof=sattrack horizons"`
	URL  string `koanf:"url" validate:"required,url"`
	// APIKey is required by sattrack-type providers.
	APIKey string `koanf:"api_key"`
	// SustainedRate is the allowed steady-state request rate in req/s,
	// derived from the provider's published quota (e.g. 1000/hour = 0.28).
	SustainedRate float64 `koanf:"sustained_rate" validate:"gt=0"`
}

// BreakerConfig holds the per-stream circuit breaker parameters.
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
	ResetTimeout     time.Duration `koanf:"reset_timeout"`
	MonitoringWindow time.Duration `koanf:"monitoring_window"`
}

// OrchestratorConfig tunes the orchestration loops shared by all streams.
type OrchestratorConfig struct {
	HealthCheckInterval time.Duration `koanf:"health_check_interval"`
	DataQualitySweep    time.Duration `koanf:"data_quality_sweep"`
	StartupRetryDelay   time.Duration `koanf:"startup_retry_delay"`
	CacheTTL            time.Duration `koanf:"cache_ttl"`
	Breaker             BreakerConfig `koanf:"breaker"`
}

// AlertsConfig tunes alert retention and auto-acknowledgement.
type AlertsConfig struct {
	HistorySize      int           `koanf:"history_size" validate:"min=1"`
	AutoResolveAfter time.Duration `koanf:"auto_resolve_after"`
}

// AssistantConfig configures the stateless LLM chat proxy.
type AssistantConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url" validate:"omitempty,url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	// SustainedRate limits proxied prompts per second.
	SustainedRate float64 `koanf:"sustained_rate"`
}

// defaultConfig returns a Config with production-ready defaults, including
// a demo stream set so the server is usable before any file or environment
// configuration exists.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8442,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Providers: []ProviderConfig{
			{
				Name:          "sattrack",
				Type:          "sattrack",
				URL:           "https://api.n2yo.com",
				SustainedRate: 0.28, // ~1000 transactions/hour
			},
			{
				Name:          "horizons",
				Type:          "horizons",
				URL:           "https://ssd.jpl.nasa.gov",
				SustainedRate: 0.012, // ~1000 calls/day
			},
		},
		Streams: []models.StreamDefinition{
			{
				ID:           "iss-position",
				Provider:     "sattrack",
				Kind:         "positions",
				Params:       map[string]string{"satid": "25544", "seconds": "1"},
				Priority:     models.PriorityCritical,
				PollInterval: 10 * time.Second,
				MaxRetries:   3,
				AlertThresholds: models.AlertThresholds{
					MaxResponseTime: 5 * time.Second,
					MaxErrorRate:    0.5,
					MaxDataAge:      time.Minute,
				},
			},
			{
				ID:           "conjunction-risk",
				Provider:     "sattrack",
				Kind:         "conjunctions",
				Priority:     models.PriorityHigh,
				PollInterval: time.Minute,
				MaxRetries:   3,
				AlertThresholds: models.AlertThresholds{
					MaxResponseTime: 8 * time.Second,
					MaxErrorRate:    0.5,
					MaxDataAge:      5 * time.Minute,
				},
			},
			{
				ID:           "mars-ephemeris",
				Provider:     "horizons",
				Kind:         "ephemeris",
				Params:       map[string]string{"COMMAND": "'499'"},
				Priority:     models.PriorityLow,
				PollInterval: 30 * time.Minute,
				MaxRetries:   2,
				AlertThresholds: models.AlertThresholds{
					MaxResponseTime: 10 * time.Second,
					MaxErrorRate:    0.8,
					MaxDataAge:      2 * time.Hour,
				},
			},
		},
		Views: []models.ViewDefinition{
			{
				ID:              "dashboard",
				Streams:         []string{"iss-position", "conjunction-risk"},
				DisplayPriority: models.PriorityCritical,
				UpdateHint:      "realtime",
			},
			{
				ID:              "planetary",
				Streams:         []string{"mars-ephemeris"},
				DisplayPriority: models.PriorityLow,
				UpdateHint:      "slow",
			},
		},
		Orchestrator: OrchestratorConfig{
			HealthCheckInterval: 30 * time.Second,
			DataQualitySweep:    time.Minute,
			StartupRetryDelay:   30 * time.Second,
			CacheTTL:            5 * time.Minute,
			Breaker: BreakerConfig{
				FailureThreshold: 5,
				ResetTimeout:     30 * time.Second,
				MonitoringWindow: 5 * time.Minute,
			},
		},
		Alerts: AlertsConfig{
			HistorySize:      50,
			AutoResolveAfter: 5 * time.Minute,
		},
		Assistant: AssistantConfig{
			Enabled:       false,
			SustainedRate: 0.5,
		},
	}
}
