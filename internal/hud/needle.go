// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import "math"

// Needle is a gauge position that moves by a clamped amount proportional to
// a rate, wrapping at Period. The speed rotor and the altimeter tape use it
// so their motion shows the trend of the value, not the value itself.
type Needle struct {
	Gain   float64
	Limit  float64
	Period float64

	pos float64
}

// NewSpeedNeedle returns the speed rotor needle: rate*10, clamped to ±90,
// wrapping every 180 degrees.
func NewSpeedNeedle() *Needle {
	return &Needle{Gain: 10, Limit: 90, Period: 180}
}

// NewAltitudeNeedle returns the altimeter tape needle: rate/100*12.5,
// clamped to ±12.5, wrapping every 25 units.
func NewAltitudeNeedle() *Needle {
	return &Needle{Gain: 12.5 / 100, Limit: 12.5, Period: 25}
}

// Advance moves the needle by the clamped rate and returns the new
// position in [0, Period).
func (n *Needle) Advance(rate float64) float64 {
	step := rate * n.Gain
	if math.IsNaN(step) {
		step = 0
	}
	step = math.Max(-n.Limit, math.Min(n.Limit, step))
	n.pos = math.Mod(n.pos+step, n.Period)
	if n.pos < 0 {
		n.pos += n.Period
	}
	return n.pos
}

// Position returns the current position.
func (n *Needle) Position() float64 { return n.pos }
