// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/sphere_hud/internal/imu"
)

// StandardGravity in m/s², used for the free-fall check.
const StandardGravity = 9.81

// Matrix is a row-major 3x3 rotation matrix mapping device coordinates to
// the world frame (X east, Y magnetic north, Z up).
type Matrix [3][3]float64

// Identity is the identity rotation.
var Identity = Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// RotationMatrix builds the device to world rotation from a gravity
// (accelerometer) vector and a geomagnetic vector, both in device
// coordinates. It reports false when the input is degenerate: the device is
// in free fall, or the two vectors are close to parallel so no horizontal
// reference can be derived.
func RotationMatrix(gravity, geomagnetic [3]float64) (Matrix, bool) {
	if !finite(gravity) || !finite(geomagnetic) {
		return Matrix{}, false
	}
	a := r3.Vec{X: gravity[0], Y: gravity[1], Z: gravity[2]}
	e := r3.Vec{X: geomagnetic[0], Y: geomagnetic[1], Z: geomagnetic[2]}

	if r3.Dot(a, a) < 0.01*StandardGravity*StandardGravity {
		return Matrix{}, false
	}

	h := r3.Cross(e, a)
	normH := r3.Norm(h)
	if normH < 0.1 {
		return Matrix{}, false
	}
	h = r3.Scale(1/normH, h)
	a = r3.Unit(a)
	m := r3.Cross(a, h)

	return Matrix{
		{h.X, h.Y, h.Z},
		{m.X, m.Y, m.Z},
		{a.X, a.Y, a.Z},
	}, true
}

// axisRemap describes how one display rotation permutes and flips the
// columns of a rotation matrix: output column i is sign[i] times input
// column src[i].
type axisRemap struct {
	src  [3]int
	sign [3]float64
}

// remapTable holds the axis remaps for a screen in the upright (camera
// looking forward) pose, indexed by display rotation.
var remapTable = [4]axisRemap{
	imu.Rotation0:   {src: [3]int{0, 2, 1}, sign: [3]float64{1, -1, 1}},
	imu.Rotation90:  {src: [3]int{1, 2, 0}, sign: [3]float64{-1, -1, 1}},
	imu.Rotation180: {src: [3]int{0, 2, 1}, sign: [3]float64{-1, -1, -1}},
	imu.Rotation270: {src: [3]int{1, 2, 0}, sign: [3]float64{1, -1, -1}},
}

// Remap re-expresses r in the coordinate system of the given display
// rotation. Unknown rotations are treated as Rotation0.
func Remap(r Matrix, rot imu.Rotation) Matrix {
	if rot < imu.Rotation0 || rot > imu.Rotation270 {
		rot = imu.Rotation0
	}
	t := remapTable[rot]

	var out Matrix
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out[row][col] = t.sign[col] * r[row][t.src[col]]
		}
	}
	return out
}

// Angles extracts azimuth, pitch and roll in degrees from a rotation matrix.
// Azimuth and roll are in (-180, 180], pitch in [-90, 90].
func Angles(r Matrix) (azimuth, pitch, roll float64) {
	azimuth = math.Atan2(r[0][1], r[1][1])
	pitch = math.Asin(clamp(-r[2][1], -1, 1))
	roll = math.Atan2(-r[2][0], r[2][2])
	return degrees(azimuth), degrees(pitch), degrees(roll)
}

func degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v [3]float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
