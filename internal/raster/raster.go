// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package raster draws hud frames into RGBA images.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/relabs-tech/sphere_hud/internal/hud"
)

// flatness is the maximum chord length, in device pixels, used when
// flattening curves.
const flatness = 1.5

// Options configures a Rasterizer.
type Options struct {
	// Background fills the image before drawing. Nil means opaque black.
	Background color.Color
}

// Rasterizer turns frames into pixels. It caches font faces and is safe
// for concurrent use.
type Rasterizer struct {
	mu    sync.Mutex
	faces *Faces
	bg    color.Color
}

// New parses the HUD fonts and returns a rasterizer.
func New(opts Options) (*Rasterizer, error) {
	faces, err := NewFaces()
	if err != nil {
		return nil, err
	}
	r := &Rasterizer{faces: faces, bg: opts.Background}
	if r.bg == nil {
		r.bg = color.Black
	}
	return r, nil
}

// Render draws f into a new image of the frame size.
func (r *Rasterizer) Render(f hud.Frame) *image.RGBA {
	w, h := max(f.Width, 0), max(f.Height, 0)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r.Draw(img, f)
	return img
}

// EncodePNG renders f and writes it as PNG.
func (r *Rasterizer) EncodePNG(w io.Writer, f hud.Frame) error {
	if err := png.Encode(w, r.Render(f)); err != nil {
		return fmt.Errorf("encode frame %d: %w", f.Seq, err)
	}
	return nil
}

// Draw paints the background and every primitive of f into dst.
func (r *Rasterizer) Draw(dst draw.Image, f hud.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	canvas := dst.Bounds()
	draw.Draw(dst, canvas, image.NewUniform(r.bg), image.Point{}, draw.Src)
	if f.Empty() {
		return
	}
	m := f.Transform.Affine()
	scale := math.Abs(f.Transform.Scale)

	for _, p := range f.Primitives {
		var mask *image.Alpha
		switch p.Kind {
		case hud.KindStroke:
			if p.Path == nil {
				continue
			}
			mask = strokeMask(canvas, p.Path.Flatten(m, flatness), p.Paint.StrokeWidth*scale)
		case hud.KindFill:
			if p.Path == nil {
				continue
			}
			mask = fillMask(canvas, p.Path.Flatten(m, flatness), p.Rule)
			if len(p.Path.Glyphs) > 0 {
				mask = r.knockout(canvas, mask, p.Path.Glyphs, m, scale)
			}
		case hud.KindText, hud.KindTextOnPath:
			if p.Text == nil {
				continue
			}
			mask = r.textMask(canvas, *p.Text, m, scale)
		case hud.KindImage:
			if p.Image != nil {
				drawImage(dst, canvas, *p.Image, m)
			}
			continue
		default:
			continue
		}
		if p.Clip != nil {
			intersect(mask, fillMask(canvas, p.Clip.Flatten(m, flatness), hud.NonZero))
		}
		if mask.Rect.Empty() {
			continue
		}
		draw.DrawMask(dst, mask.Rect, image.NewUniform(p.Paint.Color), image.Point{}, mask, mask.Rect.Min, draw.Over)
	}
}

// knockout toggles glyph coverage out of a filled mask. The mask grows to
// cover glyphs that stick out of the path.
func (r *Rasterizer) knockout(canvas image.Rectangle, mask *image.Alpha, glyphs []hud.Text, m hud.Affine, scale float64) *image.Alpha {
	out := mask
	for _, g := range glyphs {
		gm := r.textMask(canvas, g, m, scale)
		if gm.Rect.Empty() {
			continue
		}
		if !gm.Rect.In(out.Rect) {
			grown := image.NewAlpha(out.Rect.Union(gm.Rect))
			draw.Draw(grown, out.Rect, out, out.Rect.Min, draw.Src)
			out = grown
		}
		xor(out, gm)
	}
	return out
}

// textMask renders t at device resolution into a patch and maps the patch
// onto the canvas with the text anchor, angle and device transform.
func (r *Rasterizer) textMask(canvas image.Rectangle, t hud.Text, m hud.Affine, scale float64) *image.Alpha {
	size := t.Size * scale
	if t.S == "" || size < 1 {
		return image.NewAlpha(image.Rectangle{})
	}
	face := r.faces.Face(t.Face, size)
	metrics := face.Metrics()
	ascent := fix2f(metrics.Ascent)
	adv := fix2f(font.MeasureString(face, t.S))
	patch := image.NewAlpha(image.Rect(0, 0, int(math.Ceil(adv))+2, int(math.Ceil(ascent+fix2f(metrics.Descent)))+2))
	d := font.Drawer{
		Dst:  patch,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(1), Y: fixed.I(1) + metrics.Ascent},
	}
	d.DrawString(t.S)

	shift := 0.0
	switch t.Align {
	case hud.AlignCenter:
		shift = adv / 2
	case hud.AlignRight:
		shift = adv
	}
	// patch pixels -> logical text space -> canvas
	local := hud.Scale(1/scale, 1/scale).Mul(hud.Translate(-1-shift, -1-ascent))
	s2d := m.Mul(hud.Translate(t.Pos.X, t.Pos.Y)).Mul(hud.Rotate(t.Angle)).Mul(local)

	pb := patch.Bounds()
	corners := []hud.Point{
		s2d.Apply(hud.Point{X: 0, Y: 0}),
		s2d.Apply(hud.Point{X: float64(pb.Dx()), Y: 0}),
		s2d.Apply(hud.Point{X: 0, Y: float64(pb.Dy())}),
		s2d.Apply(hud.Point{X: float64(pb.Dx()), Y: float64(pb.Dy())}),
	}
	dr := bounds([]hud.Contour{{Points: corners}}, 1).Intersect(canvas)
	mask := image.NewAlpha(dr)
	if dr.Empty() {
		return mask
	}
	xdraw.BiLinear.Transform(mask, f64.Aff3{s2d.A, s2d.B, s2d.C, s2d.D, s2d.E, s2d.F}, patch, pb, xdraw.Over, nil)
	return mask
}

// drawImage blits a bitmap region with constant alpha.
func drawImage(dst draw.Image, canvas image.Rectangle, im hud.Image, m hud.Affine) {
	if im.Src == nil || im.Alpha == 0 {
		return
	}
	a := m.Apply(hud.Point{X: im.Dst.Left, Y: im.Dst.Top})
	b := m.Apply(hud.Point{X: im.Dst.Right, Y: im.Dst.Bottom})
	dr := image.Rect(int(math.Round(a.X)), int(math.Round(a.Y)), int(math.Round(b.X)), int(math.Round(b.Y)))
	if dr.Intersect(canvas).Empty() {
		return
	}
	sr := im.SrcRect
	if sr.Empty() {
		sr = im.Src.Bounds()
	}
	xdraw.NearestNeighbor.Scale(dst, dr, im.Src, sr, xdraw.Over, &xdraw.Options{
		SrcMask: image.NewUniform(color.Alpha{A: im.Alpha}),
	})
}

func fix2f(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
