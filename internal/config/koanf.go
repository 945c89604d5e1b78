// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/stellarview/config.yaml",
	"/etc/stellarview/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, then validates it. ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
// Only recognized variables are mapped; everything else is ignored so
// unrelated environment noise cannot leak into the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
//   - ASSISTANT_API_KEY -> assistant.api_key
func envTransformFunc(key string) string {
	mappings := map[string]string{
		"HTTP_HOST":             "server.host",
		"HTTP_PORT":             "server.port",
		"HTTP_TIMEOUT":          "server.timeout",
		"CORS_ORIGINS":          "server.cors_origins",
		"LOG_LEVEL":             "logging.level",
		"LOG_FORMAT":            "logging.format",
		"LOG_CALLER":            "logging.caller",
		"HEALTH_CHECK_INTERVAL": "orchestrator.health_check_interval",
		"DATA_QUALITY_SWEEP":    "orchestrator.data_quality_sweep",
		"CACHE_TTL":             "orchestrator.cache_ttl",
		"BREAKER_THRESHOLD":     "orchestrator.breaker.failure_threshold",
		"BREAKER_RESET_TIMEOUT": "orchestrator.breaker.reset_timeout",
		"ALERT_HISTORY_SIZE":    "alerts.history_size",
		"ALERT_AUTO_RESOLVE":    "alerts.auto_resolve_after",
		"ASSISTANT_ENABLED":     "assistant.enabled",
		"ASSISTANT_URL":         "assistant.url",
		"ASSISTANT_API_KEY":     "assistant.api_key",
		"ASSISTANT_MODEL":       "assistant.model",
	}

	if path, ok := mappings[strings.ToUpper(key)]; ok {
		return path
	}
	return "" // unmapped variables are dropped
}
