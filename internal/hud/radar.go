// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"math"

	"github.com/relabs-tech/sphere_hud/internal/track"
)

// drawRadar emits the radar panel: outline with the range letter, the
// track polyline relative to the latest bearing, the accuracy ring and the
// two ±60° reference radii.
func drawRadar(out []Primitive, rng track.Range, history []track.Sample, accuracy float64) []Primitive {
	r := radarRect.Inset(5, 5)
	panel := new(Path)
	panel.ArcTo(r, -90, 270)
	panel.RLineTo(0, -(r.Height()/2 - 10))
	panel.RCubicTo(0, 0, 0, -10, 10, -10)
	panel.Close()
	panel.Knockout(Text{
		S:    rng.Letter(),
		Pos:  Point{X: r.Left + 10, Y: r.Top + 22},
		Size: 20,
		Face: FaceSmall,
	})
	r = r.Inset(2, 2)
	panel.AddOval(r)
	out = append(out,
		fill(panel, colorFrame, EvenOdd),
		fill(new(Path).AddOval(r), colorRadarBG, NonZero),
	)

	radius := rng.Radius()
	c := r.Center()
	trail := new(Path).MoveTo(c.X, c.Y)
	if len(history) > 0 {
		base := history[0].Bearing + 180
		for _, s := range history {
			d := s.Distance * r.Width() / radius
			if d <= 0 {
				continue
			}
			b := radians(s.Bearing-base) + math.Pi/2
			trail.RLineTo(d*math.Cos(b), -d*math.Sin(b))
		}
	}
	tp := stroke(trail, colorTrack, 2)
	tp.Clip = new(Path).AddOval(r)
	out = append(out, tp)

	acc := math.Min(accuracy/radius, 1)
	if acc < 0 || math.IsNaN(acc) {
		acc = 0
	}
	inset := (r.Width() - r.Width()*acc) / 2
	out = append(out, stroke(new(Path).AddOval(r.Inset(inset, inset)), colorFrame, 1))

	for _, deg := range []float64{-120, -60} {
		s, co := math.Sincos(radians(deg))
		out = append(out, stroke(line(c.X, c.Y, c.X+r.Width()/2*co, c.Y+r.Height()/2*s), colorFrame, 2))
	}
	return out
}
