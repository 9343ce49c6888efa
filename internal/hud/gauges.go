// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"math"
	"strconv"
)

// Speedometer geometry, relative to its origin.
const (
	speedWidth    = 180
	speedDiameter = 55
	speedRadius   = speedDiameter / 2.0
	speedDX       = speedRadius * 0.71
	speedDY       = speedRadius * (1 - 0.71)

	cornerRadius = 10
	gaugeMargin  = 4
)

var speedOrigin = Point{X: -math.Trunc(ViewBorderX - layoutMargin), Y: math.Trunc(ViewHeight / 24)}

// drawSpeedometer emits the rotor turning at the rotor needle position,
// the outline with the reading window and the speed in km/h.
func drawSpeedometer(out []Primitive, speed int, gauge float64) []Primitive {
	at := Translate(speedOrigin.X, speedOrigin.Y)
	outer := Rect{0, 0, speedDiameter, speedDiameter}
	hub := Rect{speedDiameter / 3.0, speedDiameter / 3.0, speedDiameter / 3.0 * 2, speedDiameter / 3.0 * 2}
	rim := Rect{gaugeMargin, gaugeMargin, speedDiameter - gaugeMargin, speedDiameter - gaugeMargin}

	rotor := new(Path)
	rotor.ArcTo(rim, gauge, 60)
	rotor.ArcTo(hub, gauge+60, 120)
	rotor.ArcTo(rim, gauge+180, 60)
	rotor.ArcTo(hub, gauge+240, 120)
	rotor.Close()
	out = append(out, fill(rotor.Transformed(at), colorDefault, EvenOdd))

	body := new(Path)
	body.ArcTo(outer, 90, 225)
	body.RLineTo((speedWidth-speedDiameter)+(speedRadius-speedDX)-cornerRadius, 0)
	body.RCubicTo(0, 0, cornerRadius, 0, cornerRadius, cornerRadius)
	body.RLineTo(0, speedDiameter-speedDY-cornerRadius*2)
	body.RCubicTo(0, 0, 0, cornerRadius, -cornerRadius, cornerRadius)
	body.RLineTo(-((speedWidth-speedDiameter)+speedRadius-cornerRadius), 0)
	body.Close()
	body.AddRoundRect(Rect{speedDiameter, speedDY + gaugeMargin, speedWidth - gaugeMargin, speedDiameter - gaugeMargin}, cornerRadius, cornerRadius)
	body.AddArc(rim, 0, 360)
	out = append(out, fill(body.Transformed(at), colorDefault, EvenOdd))

	out = append(out, text(Text{
		S:     strconv.Itoa(speed),
		Pos:   Point{X: speedOrigin.X + speedWidth - gaugeMargin*2, Y: speedOrigin.Y + speedDiameter*0.8},
		Size:  speedDiameter * 0.6,
		Align: AlignRight,
		Face:  FaceReading,
	}, colorDefault))
	return append(out, stroke(line(-ViewWidth, 0, -ViewWidth*0.3, 0), colorDefault, 1))
}

// Altimeter geometry, relative to its origin.
const (
	altReadingWidth  = 150
	altReadingHeight = 40
	altScaleWidth    = 50
	altScaleHeight   = 115
	altMargin2       = 6
	altTapeTicks     = 20
)

var altOrigin = Point{
	X: math.Trunc(ViewBorderX - altReadingWidth - altScaleWidth - layoutMargin),
	Y: -math.Trunc(altReadingHeight + ViewHeight/24),
}

var altScaleRect = Rect{altReadingWidth + altMargin2, altMargin2, altReadingWidth + altScaleWidth - altMargin2, altScaleHeight - altMargin2}

// drawAltimeter emits the outline, the altitude reading and the tape
// scrolled to the altitude needle position.
func drawAltimeter(out []Primitive, altitude int, gauge float64) []Primitive {
	at := Translate(altOrigin.X, altOrigin.Y)
	const r = cornerRadius

	body := new(Path)
	body.MoveTo(0, r)
	body.RCubicTo(0, 0, 0, -r, r, -r)
	body.RLineTo(altReadingWidth+altScaleWidth-r*2, 0)
	body.RCubicTo(0, 0, r, 0, r, r)
	body.RLineTo(0, altScaleHeight-r*2)
	body.RCubicTo(0, 0, 0, r, -r, r)
	body.RLineTo(-(altScaleWidth - r*2), 0)
	body.RCubicTo(0, 0, -r, 0, -r, -r)
	body.RLineTo(0, -(altScaleHeight - altReadingHeight - r*2))
	body.RCubicTo(0, 0, 0, -r, -r, -r)
	body.RLineTo(-(altReadingWidth - r*2), 0)
	body.RCubicTo(0, 0, -r, 0, -r, -r)
	body.Close()
	body.AddRoundRect(Rect{gaugeMargin, gaugeMargin, altReadingWidth - gaugeMargin, altReadingHeight - gaugeMargin}, r, r)
	body.AddRoundRect(altScaleRect, r, r)
	out = append(out, fill(body.Transformed(at), colorDefault, EvenOdd))

	out = append(out, text(Text{
		S:     strconv.Itoa(altitude),
		Pos:   Point{X: altOrigin.X + altReadingWidth - gaugeMargin*2, Y: altOrigin.Y + altReadingHeight*0.8},
		Size:  altReadingHeight * 0.8,
		Align: AlignRight,
		Face:  FaceReading,
	}, colorDefault))

	clip := new(Path).AddRoundRect(altScaleRect, r, r).Transformed(at)
	base := int(modPositive(gauge, 5))
	large := int(gauge/5) % 5
	x, y := int(altOrigin.X), int(altOrigin.Y)
	for i := 0; i < altTapeTicks; i++ {
		lx1 := x + int(altReadingWidth+altScaleWidth/2)
		lx2 := x + int(altReadingWidth+altScaleWidth-altMargin2)
		ly := y + altMargin2 + 2 + base + i*5
		if i%5 == large {
			lx1 -= int(altScaleWidth / 8)
		}
		tick := stroke(line(float64(lx1), float64(ly), float64(lx2), float64(ly)), colorDefault, 3)
		tick.Clip = clip
		out = append(out, tick)
	}

	return append(out,
		stroke(line(ViewWidth*0.3, 0, altOrigin.X+altReadingWidth-gaugeMargin, 0), colorDefault, 1),
		stroke(line(altOrigin.X+altReadingWidth+altScaleWidth+gaugeMargin, 0, ViewWidth, 0), colorDefault, 1),
	)
}
