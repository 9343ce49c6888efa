// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

// DefaultAlpha is the smoothing factor applied on every sensor event.
const DefaultAlpha = 0.90

// LowPass is a single-pole exponential smoother: s = α·s + (1-α)·x.
// The first sample seeds the state so start-up does not ramp from zero.
type LowPass struct {
	Alpha  float64
	value  float64
	primed bool
}

// NewLowPass returns a filter with the given smoothing factor.
func NewLowPass(alpha float64) LowPass {
	return LowPass{Alpha: alpha}
}

// Filter feeds x and returns the new smoothed value.
func (f *LowPass) Filter(x float64) float64 {
	if !f.primed {
		f.value = x
		f.primed = true
		return f.value
	}
	f.value = f.Alpha*f.value + (1-f.Alpha)*x
	return f.value
}

// Value is the current smoothed value.
func (f *LowPass) Value() float64 {
	return f.value
}
