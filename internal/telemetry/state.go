// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"time"

	"github.com/relabs-tech/sphere_hud/internal/track"
)

// State is one immutable telemetry snapshot, everything the HUD draws.
// Angles are degrees, continuous (not wrapped). Track and Range come from
// the track buffer; Track is shared between snapshots and must be treated
// as read-only.
type State struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`

	Roll    float64 `json:"roll"`
	Pitch   float64 `json:"pitch"`
	Yaw     float64 `json:"yaw"`
	Heading float64 `json:"heading"`

	Speed        float64 `json:"speed_kmh"`
	SpeedRate    float64 `json:"speed_rate"` // km/h per second
	Altitude     float64 `json:"altitude_m"`
	AltitudeRate float64 `json:"altitude_rate"` // m per second
	Accuracy     float64 `json:"accuracy_m"`

	Battery   int `json:"battery"`
	SatsUsed  int `json:"sats_used"`
	SatsTotal int `json:"sats_total"`

	LocationAvailable bool `json:"location_available"`
	FlipVertical      bool `json:"flip_vertical"`
	HideGauges        bool `json:"hide_gauges"`

	Range track.Range    `json:"range"`
	Track []track.Sample `json:"track,omitempty"`
}
