// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import "image/color"

// Logical canvas. Everything is laid out on a 960x640 surface with the
// origin at its centre and Y pointing down.
const (
	ViewWidth   = 960.0
	ViewHeight  = 640.0
	ViewBorderX = ViewWidth / 2
	ViewBorderY = ViewHeight / 2

	layoutMargin = ViewWidth * 0.03
)

var (
	colorDefault = color.NRGBA{R: 0x00, G: 0xff, B: 0x60, A: 0xb0}
	colorFrame   = color.NRGBA{R: 0x00, G: 0xff, B: 0x60, A: 0xa0}
	colorCompass = color.NRGBA{R: 0x00, G: 0xff, B: 0x60, A: 0x60}
	colorRadarBG = color.NRGBA{R: 0x00, G: 0x60, B: 0x00, A: 0xa0}
	colorTrack   = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xb0}
	colorCenter  = color.NRGBA{R: 0xff, G: 0x60, B: 0x60, A: 0xa0}
)

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
