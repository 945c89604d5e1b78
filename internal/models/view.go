// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package models

// ViewDefinition maps one dashboard view to the data streams it needs.
// DisplayPriority and UpdateHint are cosmetic hints for the UI layer;
// actual polling cadence is owned by the stream definitions.
type ViewDefinition struct {
	ID              string         `koanf:"id" json:"id" validate:"required"`
	Streams         []string       `koanf:"streams" json:"streams" validate:"required,min=1"`
	DisplayPriority StreamPriority `koanf:"display_priority" json:"displayPriority"`
	UpdateHint      string         `koanf:"update_hint" json:"updateHint,omitempty"`
}
