// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package raster

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/relabs-tech/sphere_hud/internal/hud"
)

// bounds returns the pixel rectangle covering every point, grown by pad.
func bounds(contours []hud.Contour, pad float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range contours {
		for _, p := range c.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if minX > maxX {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(minX-pad)), int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad)), int(math.Ceil(maxY+pad)),
	)
}

// coverage rasterises polygons into an alpha mask covering r. Overlapping
// polygons of the same orientation saturate; opposite ones cancel.
func coverage(r image.Rectangle, polys [][]hud.Point) *image.Alpha {
	mask := image.NewAlpha(r)
	if r.Empty() {
		return mask
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Src
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		ox, oy := float64(r.Min.X), float64(r.Min.Y)
		z.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
		for _, p := range poly[1:] {
			z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		z.ClosePath()
	}
	z.Draw(mask, r, image.Opaque, image.Point{})
	return mask
}

// xor combines src into dst as a soft exclusive or, so overlapping
// coverage toggles between inside and outside.
func xor(dst, src *image.Alpha) {
	r := dst.Rect.Intersect(src.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(r.Min.X, y)
		for x := 0; x < r.Dx(); x++ {
			a, b := int(dst.Pix[di+x]), int(src.Pix[si+x])
			dst.Pix[di+x] = uint8(a + b - 2*a*b/255)
		}
	}
}

// intersect multiplies dst by clip. Pixels of dst outside clip are cleared.
func intersect(dst, clip *image.Alpha) {
	for y := dst.Rect.Min.Y; y < dst.Rect.Max.Y; y++ {
		for x := dst.Rect.Min.X; x < dst.Rect.Max.X; x++ {
			i := dst.PixOffset(x, y)
			if dst.Pix[i] == 0 {
				continue
			}
			dst.Pix[i] = uint8(int(dst.Pix[i]) * int(clip.AlphaAt(x, y).A) / 255)
		}
	}
}

// fillMask returns the coverage of the closed contours under rule.
func fillMask(canvas image.Rectangle, contours []hud.Contour, rule hud.FillRule) *image.Alpha {
	r := bounds(contours, 1).Intersect(canvas)
	if rule == hud.NonZero {
		polys := make([][]hud.Point, len(contours))
		for i, c := range contours {
			polys[i] = c.Points
		}
		return coverage(r, polys)
	}
	mask := image.NewAlpha(r)
	for _, c := range contours {
		cr := bounds([]hud.Contour{c}, 1).Intersect(r)
		if cr.Empty() {
			continue
		}
		xor(mask, coverage(cr, [][]hud.Point{c.Points}))
	}
	return mask
}

// strokeMask returns the coverage of the polylines widened to width. Each
// segment becomes a quad and every vertex gets an octagonal join; all
// share one orientation so overlaps saturate instead of cancelling.
func strokeMask(canvas image.Rectangle, contours []hud.Contour, width float64) *image.Alpha {
	hw := math.Max(width, 1) / 2
	r := bounds(contours, hw+1).Intersect(canvas)
	var polys [][]hud.Point
	for _, c := range contours {
		pts := c.Points
		if c.Closed && len(pts) > 1 && pts[0] != pts[len(pts)-1] {
			pts = append(pts[:len(pts):len(pts)], pts[0])
		}
		for i := 1; i < len(pts); i++ {
			if q := segmentQuad(pts[i-1], pts[i], hw); q != nil {
				polys = append(polys, q)
			}
		}
		if hw > 0.75 {
			for _, p := range pts {
				polys = append(polys, joinOctagon(p, hw))
			}
		}
	}
	return coverage(r, polys)
}

func segmentQuad(a, b hud.Point, hw float64) []hud.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil
	}
	nx, ny := -dy/l*hw, dx/l*hw
	return []hud.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}
}

// joinOctagon winds the same way as segmentQuad.
func joinOctagon(c hud.Point, r float64) []hud.Point {
	pts := make([]hud.Point, 8)
	for i := range pts {
		s, co := math.Sincos(-float64(i) * math.Pi / 4)
		pts[i] = hud.Point{X: c.X + r*co, Y: c.Y + r*s}
	}
	return pts
}
