// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

// radarRect is the panel the radar and the upper frame line wrap around.
var radarRect = Rect{
	Left:   -ViewBorderX + layoutMargin,
	Top:    -ViewBorderY + 50,
	Right:  -ViewBorderX + layoutMargin + ViewWidth/5,
	Bottom: -ViewBorderY + 50 + ViewWidth/5,
}

const (
	centerRadius    = 10
	centerFrameSize = 180
	centerLineSize  = 30
)

// drawFrame emits the decoration lines, the HUD badge in the top right
// corner of the canvas and the four red brackets around the centre.
// borderX is the half width of the visible canvas in logical units,
// which is wider than the layout when the aspect ratio is.
func drawFrame(out []Primitive, borderX float64) []Primitive {
	lines := new(Path)
	lines.MoveTo(-ViewWidth, ViewBorderY-50)
	lines.LineTo(ViewBorderX-ViewWidth/3, ViewBorderY-50)
	lines.RCubicTo(0, 0, 30, 0, 30, -30)
	lines.RLineTo(0, -40)
	lines.RCubicTo(0, 0, 0, -100, 100, -100)
	lines.RLineTo(ViewWidth, 0)

	lines.MoveTo(-ViewWidth, radarRect.Top+ViewWidth/10)
	lines.LineTo(radarRect.Left, radarRect.Top+ViewWidth/10)
	lines.ArcTo(radarRect, 180, -225)
	lines.RCubicTo(0, 0, 0, -(ViewWidth / 10 * 0.29), 50, -(ViewWidth / 10 * 0.29))
	lines.RLineTo(ViewWidth, 0)
	out = append(out, stroke(lines, colorFrame, 1))

	badge := new(Path)
	badge.MoveTo(borderX-60, -ViewBorderY+50)
	badge.RLineTo(-25, 0).RLineTo(-20, 15).RLineTo(15, 20).RLineTo(10, 0).Close()
	badge.MoveTo(borderX, -ViewBorderY+50)
	badge.RLineTo(-55, 0).RLineTo(-20, 35).RLineTo(75, 0).Close()
	badge.Knockout(Text{
		S:    "HUD",
		Pos:  Point{X: borderX - 60, Y: -ViewBorderY + 80},
		Size: 20,
		Face: FaceSmall,
	})
	out = append(out, fill(badge, colorFrame, EvenOdd))

	bracket := new(Path)
	bracket.MoveTo(-centerFrameSize, -centerFrameSize+centerLineSize)
	bracket.RLineTo(0, -(centerLineSize - centerRadius))
	bracket.RCubicTo(0, 0, 0, -centerRadius, centerRadius, -centerRadius)
	bracket.RLineTo(centerLineSize-centerRadius, 0)
	quarter := Rotate(90)
	for i := 0; i < 4; i++ {
		out = append(out, stroke(bracket, colorCenter, 1))
		bracket = bracket.Transformed(quarter)
	}
	return out
}
