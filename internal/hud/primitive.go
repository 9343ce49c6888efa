// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"image"
	"image/color"
)

// Kind selects how a primitive is drawn.
type Kind uint8

const (
	KindStroke Kind = iota
	KindFill
	KindText
	KindTextOnPath
	KindImage
)

// FillRule decides which regions of a path are inside.
type FillRule uint8

const (
	EvenOdd FillRule = iota
	NonZero
)

// Align is the horizontal anchoring of a text run.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Face names one of the HUD typefaces; backends map it to a real font.
type Face uint8

const (
	// FaceReading is the large italic numeric face (speed, altitude, clock).
	FaceReading Face = iota
	// FaceSmall is used for the labels and the GPS line.
	FaceSmall
	// FaceCompass draws the cardinal letters on the compass ring.
	FaceCompass
)

// Paint is colour plus stroke width (ignored for fills).
type Paint struct {
	Color       color.NRGBA `json:"color"`
	StrokeWidth float64     `json:"stroke_width,omitempty"`
}

// Text is a single line of text. Pos is the anchor on the baseline, Angle
// the baseline direction in degrees (0 is +X).
type Text struct {
	S     string  `json:"s"`
	Pos   Point   `json:"pos"`
	Size  float64 `json:"size"`
	Align Align   `json:"align"`
	Face  Face    `json:"face"`
	Angle float64 `json:"angle,omitempty"`
}

// Image blits SrcRect of a named source bitmap into Dst.
type Image struct {
	Name    string          `json:"name"`
	Src     image.Image     `json:"-"`
	SrcRect image.Rectangle `json:"src_rect"`
	Dst     Rect            `json:"dst"`
	Alpha   uint8           `json:"alpha"`
}

// Primitive is one draw operation in logical coordinates.
type Primitive struct {
	Kind  Kind     `json:"kind"`
	Paint Paint    `json:"paint"`
	Path  *Path    `json:"path,omitempty"`
	Rule  FillRule `json:"rule,omitempty"`
	Text  *Text    `json:"text,omitempty"`
	// Along is the segment a KindTextOnPath run was laid out on.
	Along []Point `json:"along,omitempty"`
	Image *Image  `json:"image,omitempty"`
	Clip  *Path   `json:"clip,omitempty"`
}

// Transform maps logical units to device pixels: scale about the origin,
// optional vertical mirror, then translate.
type Transform struct {
	Scale float64 `json:"scale"`
	TX    float64 `json:"tx"`
	TY    float64 `json:"ty"`
	FlipY bool    `json:"flip_y"`
}

// Affine returns the transform as a matrix.
func (t Transform) Affine() Affine {
	sy := t.Scale
	if t.FlipY {
		sy = -sy
	}
	return Translate(t.TX, t.TY).Mul(Scale(t.Scale, sy))
}

// Frame is the output of one render tick.
type Frame struct {
	Seq        uint64      `json:"seq"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Transform  Transform   `json:"transform"`
	Primitives []Primitive `json:"primitives"`
}

// Empty reports whether nothing would be drawn.
func (f Frame) Empty() bool { return len(f.Primitives) == 0 }

func stroke(p *Path, c color.NRGBA, width float64) Primitive {
	return Primitive{Kind: KindStroke, Paint: Paint{Color: c, StrokeWidth: width}, Path: p}
}

func fill(p *Path, c color.NRGBA, rule FillRule) Primitive {
	return Primitive{Kind: KindFill, Paint: Paint{Color: c}, Path: p, Rule: rule}
}

func text(t Text, c color.NRGBA) Primitive {
	return Primitive{Kind: KindText, Paint: Paint{Color: c}, Text: &t}
}

func line(x1, y1, x2, y2 float64) *Path {
	return new(Path).MoveTo(x1, y1).LineTo(x2, y2)
}
