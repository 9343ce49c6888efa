// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	timerWidth  = 160
	timerHeight = 40
	blinkPeriod = 250 * time.Millisecond
)

var timerOrigin = Point{
	X: -math.Trunc(ViewBorderX - layoutMargin),
	Y: math.Trunc(ViewBorderY - 50 - timerHeight - layoutMargin),
}

// drawTimer emits the clock panel. The blinker dot is filled on even
// 250 ms periods.
func drawTimer(out []Primitive, now time.Time) []Primitive {
	p := new(Path)
	p.AddRoundRect(Rect{0, 0, timerWidth, timerHeight}, cornerRadius, cornerRadius)
	p.AddRoundRect(Rect{timerHeight/2 + gaugeMargin*2, gaugeMargin, timerWidth - gaugeMargin, timerHeight - gaugeMargin}, cornerRadius, cornerRadius)
	blinker := Rect{gaugeMargin, timerHeight / 4, timerHeight/2 + gaugeMargin, timerHeight / 4 * 3}
	p.AddOval(blinker)
	if now.UnixMilli()/blinkPeriod.Milliseconds()%2 == 0 {
		p.AddOval(blinker.Inset(2, 2))
	}
	out = append(out, fill(p.Transformed(Translate(timerOrigin.X, timerOrigin.Y)), colorDefault, EvenOdd))
	return append(out, text(Text{
		S:     now.Format("15:04"),
		Pos:   Point{X: timerOrigin.X + timerWidth - gaugeMargin*2, Y: timerOrigin.Y + timerHeight*0.8},
		Size:  timerHeight * 0.8,
		Align: AlignRight,
		Face:  FaceReading,
	}, colorDefault))
}

// Battery ("damage") gauge geometry. The gauge runs along a straight
// section, a quarter turn and a second straight section as the value
// goes from 0 to 1.
const (
	dmgReadingWidth  = 80
	dmgReadingHeight = 40
	dmgLegendWidth   = 25
	dmgLegendHeight  = 15
	dmgLegendBase    = 3
	dmgThickness     = 25
	dmgRoundSize     = 50
	dmgStraightSize  = 55

	dmgBaseX = -(dmgThickness + dmgRoundSize + dmgStraightSize)
	dmgBaseY = dmgStraightSize + dmgRoundSize + dmgThickness
)

var dmgOrigin = Point{
	X: math.Trunc(ViewBorderX - layoutMargin),
	Y: math.Trunc(ViewBorderY - 220 + layoutMargin + 10),
}

// batteryGauge returns the gauge bar for value in [0, 1], in local
// coordinates.
func batteryGauge(value float64) *Path {
	round := Rect{-(dmgThickness + dmgRoundSize + dmgRoundSize), dmgStraightSize - dmgRoundSize, -dmgThickness, dmgStraightSize + dmgRoundSize}
	p := new(Path)
	p.MoveTo(dmgBaseX, dmgStraightSize+dmgRoundSize)
	switch {
	case value < 0.25:
		l := dmgStraightSize * (value / 0.25)
		p.RLineTo(l, 0)
		p.RLineTo(0, dmgThickness)
		p.RLineTo(-l, 0)
	case value < 0.75:
		deg := float64(int(90 * (value - 0.25) / 0.5))
		p.RLineTo(dmgStraightSize, 0)
		p.ArcTo(round, 90, -deg)
		p.ArcTo(round.Inset(-dmgThickness, -dmgThickness), 90-deg, deg)
		p.RLineTo(-dmgStraightSize, 0)
	default:
		l := dmgStraightSize * ((value - 0.75) / 0.25)
		p.RLineTo(dmgStraightSize, 0)
		p.ArcTo(round, 90, -90)
		p.RLineTo(0, -l)
		p.RLineTo(dmgThickness, 0)
		p.RLineTo(0, l)
		p.ArcTo(round.Inset(-dmgThickness, -dmgThickness), 0, 90)
		p.RLineTo(-dmgStraightSize, 0)
	}
	return p.RLineTo(0, -dmgThickness)
}

// drawDamage emits the battery gauge, the BATT/ACCU reading panels and the
// satellite count line.
func drawDamage(out []Primitive, battery int, accuracy float64, used, total int) []Primitive {
	at := Translate(dmgOrigin.X, dmgOrigin.Y)
	value := math.Max(0, math.Min(1, float64(battery)/100))
	out = append(out, fill(batteryGauge(value).Transformed(at), colorDefault, EvenOdd))

	const r = cornerRadius
	const m = gaugeMargin
	panel := new(Path)
	panel.MoveTo(dmgBaseX, dmgBaseY)
	panel.RLineTo(-(dmgReadingWidth + dmgLegendWidth - r), 0)
	panel.RCubicTo(0, 0, -r, 0, -r, -r)
	panel.RLineTo(0, -(dmgReadingHeight + dmgLegendHeight - r*2))
	panel.RCubicTo(0, 0, 0, -r, r, -r)
	panel.RLineTo(dmgReadingWidth-r*2, 0)
	panel.RCubicTo(0, 0, r, 0, r, r)
	panel.RCubicTo(0, 0, 0, (dmgReadingHeight+dmgLegendHeight)-r-dmgThickness, dmgLegendWidth, (dmgReadingHeight+dmgLegendHeight)-r-dmgThickness)
	panel.RLineTo(0, dmgThickness)

	upper := float64(dmgBaseY - dmgReadingHeight - dmgLegendHeight - m)
	panel.AddRoundRect(Rect{dmgBaseX - dmgLegendWidth - dmgReadingWidth + m, dmgBaseY - dmgReadingHeight + m, dmgBaseX - dmgLegendWidth - m, dmgBaseY - m}, r, r)
	panel.AddRoundRect(Rect{dmgBaseX - dmgLegendWidth - dmgReadingWidth, upper - dmgReadingHeight - dmgLegendHeight, dmgBaseX - dmgLegendWidth, upper}, r, r)
	panel.AddRoundRect(Rect{dmgBaseX - dmgLegendWidth - dmgReadingWidth + m, upper - dmgReadingHeight + m, dmgBaseX - dmgLegendWidth - m, upper - m}, r, r)

	for _, t := range []Text{
		{S: "%", Pos: Point{dmgBaseX - dmgLegendWidth/2.0, dmgBaseY - 5}},
		{S: "BATT", Pos: Point{dmgBaseX - dmgLegendWidth - dmgReadingWidth/2, dmgBaseY - dmgReadingHeight + dmgLegendBase}},
		{S: "ACCU", Pos: Point{dmgBaseX - dmgLegendWidth - dmgReadingWidth/2, upper - dmgReadingHeight + dmgLegendBase}},
	} {
		t.Size, t.Align, t.Face = 20, AlignCenter, FaceSmall
		panel.Knockout(t)
	}
	out = append(out, fill(panel.Transformed(at), colorDefault, EvenOdd))

	readingX := dmgOrigin.X + dmgBaseX - dmgLegendWidth - m*2
	reading := func(s string, y float64) Primitive {
		return text(Text{S: s, Pos: Point{readingX, y}, Size: dmgReadingHeight * 0.8, Align: AlignRight, Face: FaceReading}, colorDefault)
	}
	out = append(out,
		reading(strconv.Itoa(battery), dmgOrigin.Y+dmgBaseY-m*2),
		reading(strconv.Itoa(int(math.Ceil(accuracy))), dmgOrigin.Y+upper-m*2),
	)

	return append(out, text(Text{
		S:     fmt.Sprintf("GPS %2d/%2d", used, total),
		Pos:   Point{dmgOrigin.X + dmgBaseX - dmgLegendWidth, dmgOrigin.Y + dmgBaseY - dmgReadingHeight*2 - dmgLegendHeight*2 - m*2},
		Size:  17,
		Align: AlignRight,
		Face:  FaceSmall,
	}, colorFrame))
}

func modPositive(v, m float64) float64 {
	v = math.Mod(v, m)
	if v < 0 {
		v += m
	}
	return v
}
