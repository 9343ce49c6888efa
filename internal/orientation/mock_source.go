// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/sphere_hud/internal/imu"
)

// Reference vectors for a device held upright, screen towards the viewer,
// camera pointing at magnetic north.
var (
	uprightGravity = r3.Vec{X: 0, Y: StandardGravity, Z: 0}
	uprightField   = r3.Vec{X: 0, Y: -42, Z: -22}
)

type mockSource struct {
	start    time.Time
	rotation imu.Rotation
	now      func() time.Time
}

// NewMockSource creates a raw sample source that sways the device in roll
// and pitch while slowly turning it, so the HUD has something to show
// without hardware.
func NewMockSource(rot imu.Rotation) imu.RawSource {
	return &mockSource{start: time.Now(), rotation: rot, now: time.Now}
}

func (m *mockSource) NextRaw() (imu.RawSample, error) {
	t := m.now()
	elapsed := t.Sub(m.start).Seconds()

	roll := 20 * math.Sin(elapsed) * math.Pi / 180
	pitch := 15 * math.Cos(elapsed*0.7) * math.Pi / 180
	yaw := math.Mod(elapsed*30, 360) * math.Pi / 180

	orient := func(v r3.Vec) r3.Vec {
		v = rotate(v, yaw, r3.Vec{Y: 1})
		v = rotate(v, pitch, r3.Vec{X: 1})
		return rotate(v, roll, r3.Vec{Z: 1})
	}
	a := orient(uprightGravity)
	f := orient(uprightField)

	return imu.RawSample{
		Source:   "mock",
		Accel:    [3]float64{a.X, a.Y, a.Z},
		Mag:      [3]float64{f.X, f.Y, f.Z},
		Rotation: m.rotation,
		Time:     t,
	}, nil
}

// rotate applies Rodrigues' formula around the unit axis k.
func rotate(v r3.Vec, angle float64, k r3.Vec) r3.Vec {
	cos, sin := math.Cos(angle), math.Sin(angle)
	out := r3.Scale(cos, v)
	out = r3.Add(out, r3.Scale(sin, r3.Cross(k, v)))
	return r3.Add(out, r3.Scale(r3.Dot(k, v)*(1-cos), k))
}
