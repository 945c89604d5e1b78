// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/stellarview/stellarview/internal/logging"
)

// Validate checks field constraints and cross-references between sections.
// It is called by Load; call it directly when constructing a Config by hand
// in tests.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	providers := make(map[string]ProviderConfig, len(c.Providers))
	for _, p := range c.Providers {
		if _, dup := providers[p.Name]; dup {
			return fmt.Errorf("duplicate provider name %q", p.Name)
		}
		if p.Type == "sattrack" && p.APIKey == "" {
			logging.Warn().Str("provider", p.Name).Msg("sattrack provider configured without api key, fetches will fail")
		}
		providers[p.Name] = p
	}

	streams := make(map[string]struct{}, len(c.Streams))
	for _, s := range c.Streams {
		if _, dup := streams[s.ID]; dup {
			return fmt.Errorf("duplicate stream id %q", s.ID)
		}
		if _, ok := providers[s.Provider]; !ok {
			return fmt.Errorf("stream %q references unknown provider %q", s.ID, s.Provider)
		}
		if s.PollInterval <= 0 {
			return fmt.Errorf("stream %q has non-positive poll interval", s.ID)
		}
		streams[s.ID] = struct{}{}
	}

	for _, v := range c.Views {
		for _, id := range v.Streams {
			if _, ok := streams[id]; !ok {
				return fmt.Errorf("view %q references unknown stream %q", v.ID, id)
			}
		}
	}

	// Cache entries should outlive a few breaker reset cycles, otherwise an
	// open circuit has nothing to serve by the time it half-opens.
	if c.Orchestrator.CacheTTL < c.Orchestrator.Breaker.ResetTimeout {
		logging.Warn().
			Dur("cache_ttl", c.Orchestrator.CacheTTL).
			Dur("breaker_reset", c.Orchestrator.Breaker.ResetTimeout).
			Msg("cache TTL shorter than breaker reset timeout, open circuits may have no fallback data")
	}

	if c.Assistant.Enabled && c.Assistant.URL == "" {
		return fmt.Errorf("assistant enabled but no upstream URL configured")
	}

	return nil
}
