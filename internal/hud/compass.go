// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"image/color"
	"math"
)

const (
	compassPoints = 24
	compassStep   = 360 / compassPoints

	// focal distance from the eye to the screen plane
	focalDistance = ViewHeight / 2
	// points closer than this to the eye are not projected
	nearPlane = 0.2
)

var compassLabels = map[int]string{
	0: "N", 45: "NE", 90: "E", 135: "SE",
	180: "S", 225: "SW", 270: "W", 315: "NW",
}

type point3 struct{ x, y, z float64 }

// compassRing projects a unit circle on the horizontal plane, seen from an
// eye raised by sin(pitch)*1.5 and rotated by pitch about X and roll about
// Z. Angles are degrees.
func compassRing(roll, pitch, yaw int) [compassPoints]point3 {
	rollRad := radians(float64(roll))
	pitchRad := radians(float64(pitch))
	yawRad := radians(float64(yaw))
	eyeY := math.Sin(pitchRad) * 1.5

	var pts [compassPoints]point3
	for i := range pts {
		// clockwise from north; the view looks down -Z
		rad := radians(float64(i*compassStep - 90))
		x := math.Cos(rad - yawRad)
		z := math.Sin(rad - yawRad)
		y := -eyeY

		d := math.Hypot(y, z)
		r := math.Atan2(y, z)
		z = d * math.Cos(r-pitchRad)
		y = d * math.Sin(r-pitchRad)

		d = math.Hypot(x, y)
		r = math.Atan2(y, x)
		x = d * math.Cos(r-rollRad)
		y = d * math.Sin(r-rollRad)

		pts[i] = point3{x: x, y: y, z: -z}
	}
	return pts
}

// drawCompass emits the cardinal labels and the ring stroke. An edge with
// either end behind the near plane is dropped and the next visible edge
// starts a new contour.
func drawCompass(out []Primitive, roll, pitch, yaw int) []Primitive {
	pts := compassRing(roll, pitch, yaw)
	ring := new(Path)
	broken := false
	for p1 := 0; p1 < compassPoints; p1++ {
		p2 := (p1 + 1) % compassPoints
		a, b := pts[p1], pts[p2]
		if a.z < nearPlane || b.z < nearPlane {
			broken = true
			continue
		}
		d1 := focalDistance / a.z
		d2 := focalDistance / b.z
		s1 := Point{X: d1 * a.x, Y: d1 * a.y}
		s2 := Point{X: d2 * b.x, Y: d2 * b.y}
		if ring.Empty() || broken {
			ring.MoveTo(s1.X, s1.Y)
			broken = false
		}
		ring.LineTo(s2.X, s2.Y)

		if label, ok := compassLabels[p1*compassStep]; ok {
			out = append(out, textOnSegment(Text{
				S:     label,
				Size:  (d1 + d2) / 2 * 0.1,
				Align: AlignCenter,
				Face:  FaceCompass,
			}, s1, s2, -4, colorCompass))
		}
	}
	return append(out, stroke(ring, colorDefault, 2))
}

// textOnSegment centres t on the segment a-b with the baseline along it,
// shifted by vOffset along the segment normal (negative is above).
func textOnSegment(t Text, a, b Point, vOffset float64, c color.NRGBA) Primitive {
	angle := math.Atan2(b.Y-a.Y, b.X-a.X)
	s, co := math.Sincos(angle)
	mid := Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	t.Pos = Point{X: mid.X - s*vOffset, Y: mid.Y + co*vOffset}
	t.Angle = angle * 180 / math.Pi
	return Primitive{
		Kind:  KindTextOnPath,
		Paint: Paint{Color: c},
		Text:  &t,
		Along: []Point{a, b},
	}
}
