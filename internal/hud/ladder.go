// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"fmt"
	"math"
)

const (
	// distance of the tick vertex from the centre
	ladderVertex = int(min(ViewWidth, ViewHeight)) / 5
	ladderTicks  = 5

	pitchDigitLength = 20
	pitchDigitSize   = 22
	// approximate cap height of the small face, as a fraction of its size
	capHeight = 0.7
)

// ladderTick is one rung of the pitch ladder, before roll is applied.
type ladderTick struct {
	deg    int // degrees above (negative) or below the horizon
	x, y   int
	length int
	alpha  uint8
}

// pitchTicks returns the rungs around the current pitch. pitch is the
// screen pitch (already negated from the device pitch).
func pitchTicks(pitch int) []ladderTick {
	ticks := make([]ladderTick, 0, 2*ladderTicks+1)
	for i := -ladderTicks; i <= ladderTicks; i++ {
		v := i*10 + (-pitch % 10)
		abs := v
		if abs < 0 {
			abs = -abs
		}
		t := ladderTick{
			deg:    v,
			x:      int(0.05*float64(v*v)) + ladderVertex,
			y:      v * 6,
			length: abs,
		}
		if -v == pitch {
			t.length = 50 + int(float64(abs)*1.5)
		}
		if a := (60 - abs) * 255 / 60; a > 0 {
			t.alpha = uint8(min(a, 255))
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// drawPitchLadder emits both halves of every rung rotated by roll, then the
// digital pitch readout on each side.
func drawPitchLadder(out []Primitive, roll, pitch int) []Primitive {
	rollRad := radians(float64(roll))
	for _, t := range pitchTicks(pitch) {
		r := math.Hypot(float64(t.x), float64(t.y))
		base := [2]float64{
			math.Atan2(float64(t.y), float64(t.x)),
			math.Atan2(float64(t.y), float64(-t.x)),
		}
		c := withAlpha(colorDefault, t.alpha)
		for j, a := range base {
			px := int(r * math.Cos(a+rollRad))
			py := -int(r * math.Sin(a+rollRad))
			dir := rollRad
			if j == 1 {
				dir -= math.Pi
			}
			ppx := px + int(float64(t.length)*math.Cos(dir))
			ppy := py - int(float64(t.length)*math.Sin(dir))
			out = append(out, stroke(line(float64(px), float64(py), float64(ppx), float64(ppy)), c, 2))
		}
	}

	sign := " "
	if pitch < 0 {
		sign = "-"
	}
	label := fmt.Sprintf("%s%02d", sign, absInt(pitch))
	for i := 0; i < 2; i++ {
		rot := rollRad - float64(i)*math.Pi
		cos, sin := math.Cos(rot), math.Sin(rot)
		px := int(float64(ladderVertex) * cos)
		py := -int(float64(ladderVertex) * sin)
		ppx := px + int(pitchDigitLength*cos)
		ppy := py - int(pitchDigitLength*sin)
		out = append(out, stroke(line(float64(px), float64(py), float64(ppx), float64(ppy)), colorDefault, 2))

		tx := int(float64(ladderVertex-30) * cos)
		ty := -int(float64(ladderVertex-30) * sin)
		out = append(out, text(Text{
			S:     label,
			Pos:   Point{X: float64(tx), Y: float64(ty) + math.Floor(pitchDigitSize*capHeight/2)},
			Size:  pitchDigitSize,
			Align: AlignCenter,
			Face:  FaceSmall,
		}, colorDefault))
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
