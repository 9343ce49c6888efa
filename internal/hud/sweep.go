// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import "github.com/relabs-tech/sphere_hud/internal/telemetry"

// Sweep start-up values.
const (
	SweepTicks = 30

	sweepSpeed        = 2777
	sweepSpeedRate    = -90
	sweepAltitude     = 99999
	sweepAltitudeRate = -100
	sweepAccuracy     = 500
)

// Sweep runs the start-up animation: for SweepTicks+1 frames the gauges
// are driven from their extremes toward zero while the noise overlay fades
// out. It runs once per renderer.
type Sweep struct {
	count int
}

// Done reports whether the sweep has finished.
func (s *Sweep) Done() bool { return s.count > SweepTicks }

// Apply returns the state to draw this frame and the noise alpha. Once the
// sweep is done the state passes through untouched with zero noise.
func (s *Sweep) Apply(st telemetry.State) (telemetry.State, uint8) {
	if s.Done() {
		return st, 0
	}
	f := float64(SweepTicks-s.count) / SweepTicks
	s.count++

	st.Speed = f * sweepSpeed
	st.SpeedRate = sweepSpeedRate
	st.Altitude = f * sweepAltitude
	st.AltitudeRate = sweepAltitudeRate
	st.Battery = int((1 - f) * 100)
	st.Accuracy = f * sweepAccuracy
	return st, uint8(f * 255)
}
