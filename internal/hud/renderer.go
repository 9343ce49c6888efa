// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"image"
	"math"
	"math/rand/v2"
	"time"

	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// Options configures a Renderer. Zero values pick the wall clock and a
// fixed noise seed.
type Options struct {
	Now  func() time.Time
	Seed uint64
}

// Renderer turns telemetry snapshots into frames. It owns the gauge
// needles, the start-up sweep and the noise source, so it must be driven
// from a single goroutine.
type Renderer struct {
	now   func() time.Time
	rng   *rand.Rand
	noise *image.Gray

	speed    *Needle
	altitude *Needle
	sweep    Sweep
}

// NewRenderer returns a renderer with fresh needles and a pending sweep.
func NewRenderer(opts Options) *Renderer {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Renderer{
		now:      now,
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed+1)),
		noise:    NewNoiseImage(opts.Seed),
		speed:    NewSpeedNeedle(),
		altitude: NewAltitudeNeedle(),
	}
}

// Noise returns the bitmap referenced by noise image primitives.
func (r *Renderer) Noise() *image.Gray { return r.noise }

// SweepDone reports whether the start-up sweep has finished.
func (r *Renderer) SweepDone() bool { return r.sweep.Done() }

// FitTransform returns the transform that fits the logical view into a
// width x height surface, centred, preserving the aspect ratio.
func FitTransform(width, height int, flip bool) Transform {
	scale := math.Min(float64(width)/ViewWidth, float64(height)/ViewHeight)
	return Transform{
		Scale: scale,
		TX:    float64(width / 2),
		TY:    float64(height / 2),
		FlipY: flip,
	}
}

// RenderFrame draws one frame of the HUD for st on a width x height
// surface. The snapshot is not modified. A non-positive size yields an
// empty frame and does not advance the sweep or the needles.
func (r *Renderer) RenderFrame(st telemetry.State, width, height int) Frame {
	f := Frame{Seq: st.Seq, Width: width, Height: height}
	if width <= 0 || height <= 0 {
		return f
	}
	f.Transform = FitTransform(width, height, st.FlipVertical)
	scale := f.Transform.Scale
	borderX := float64(width) / 2 / scale
	borderY := float64(height) / 2 / scale

	st, noiseAlpha := r.sweep.Apply(st)
	roll := quantize(st.Roll)
	pitch := -quantize(st.Pitch)
	yaw := quantize(st.Heading)

	out := make([]Primitive, 0, 128)
	out = drawCompass(out, roll, pitch, yaw)
	out = drawPitchLadder(out, roll, pitch)

	if !st.HideGauges {
		out = drawFrame(out, borderX)
		out = drawRadar(out, st.Range, st.Track, st.Accuracy)
		out = drawSpeedometer(out, int(st.Speed), r.speed.Advance(st.SpeedRate))
		out = drawAltimeter(out, int(st.Altitude), r.altitude.Advance(st.AltitudeRate))
		out = drawTimer(out, r.now())
		out = drawDamage(out, st.Battery, st.Accuracy, st.SatsUsed, st.SatsTotal)
	}

	canvasW := int(float64(width) / scale)
	canvasH := int(float64(height) / scale)
	out = drawNoise(out, r.noise, r.rng, canvasW, canvasH, borderX, borderY, noiseAlpha)

	f.Primitives = out
	return f
}

// quantize reduces a continuous angle to whole degrees in (-360, 360).
func quantize(deg float64) int {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	return int(math.Mod(deg, 360))
}
