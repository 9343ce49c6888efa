// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"fmt"
	"math"
)

// Verb is a path command.
type Verb uint8

const (
	VerbMove Verb = iota
	VerbLine
	VerbCubic
	VerbClose
)

var verbNames = [...]string{"M", "L", "C", "Z"}

func (v Verb) String() string {
	if int(v) < len(verbNames) {
		return verbNames[v]
	}
	return fmt.Sprintf("Verb(%d)", uint8(v))
}

// MarshalText encodes the verb as its SVG letter.
func (v Verb) MarshalText() ([]byte, error) {
	if int(v) >= len(verbNames) {
		return nil, fmt.Errorf("hud: unknown verb %d", uint8(v))
	}
	return []byte(verbNames[v]), nil
}

// UnmarshalText decodes an SVG letter.
func (v *Verb) UnmarshalText(b []byte) error {
	for i, n := range verbNames {
		if n == string(b) {
			*v = Verb(i)
			return nil
		}
	}
	return fmt.Errorf("hud: unknown verb %q", b)
}

// Segment is one path command. MoveTo and LineTo use Pts[0]; CubicTo uses
// Pts[0..2] (two controls, then the end point).
type Segment struct {
	Verb Verb    `json:"v"`
	Pts  []Point `json:"p,omitempty"`
}

// Path is a list of contours in logical units. Absolute and relative
// builders mirror the usual canvas API; arcs are stored as cubic Béziers so
// every backend only needs moves, lines and cubics.
//
// Glyphs are text runs cut out of the path when it is filled even-odd.
type Path struct {
	Segments []Segment `json:"segments"`
	Glyphs   []Text    `json:"glyphs,omitempty"`

	cur   Point
	start Point
}

// Empty reports whether the path has no commands.
func (p *Path) Empty() bool { return len(p.Segments) == 0 }

// Current returns the pen position.
func (p *Path) Current() Point { return p.cur }

// MoveTo starts a new contour at (x, y).
func (p *Path) MoveTo(x, y float64) *Path {
	pt := Point{x, y}
	p.Segments = append(p.Segments, Segment{Verb: VerbMove, Pts: []Point{pt}})
	p.cur, p.start = pt, pt
	return p
}

// LineTo adds a straight line. On an empty path it starts at the origin.
func (p *Path) LineTo(x, y float64) *Path {
	p.ensureStart()
	pt := Point{x, y}
	p.Segments = append(p.Segments, Segment{Verb: VerbLine, Pts: []Point{pt}})
	p.cur = pt
	return p
}

// CubicTo adds a cubic Bézier.
func (p *Path) CubicTo(x1, y1, x2, y2, x3, y3 float64) *Path {
	p.ensureStart()
	end := Point{x3, y3}
	p.Segments = append(p.Segments, Segment{Verb: VerbCubic, Pts: []Point{{x1, y1}, {x2, y2}, end}})
	p.cur = end
	return p
}

// RMoveTo moves relative to the pen.
func (p *Path) RMoveTo(dx, dy float64) *Path {
	return p.MoveTo(p.cur.X+dx, p.cur.Y+dy)
}

// RLineTo adds a line relative to the pen.
func (p *Path) RLineTo(dx, dy float64) *Path {
	return p.LineTo(p.cur.X+dx, p.cur.Y+dy)
}

// RCubicTo adds a cubic with every point relative to the pen.
func (p *Path) RCubicTo(dx1, dy1, dx2, dy2, dx3, dy3 float64) *Path {
	c := p.cur
	return p.CubicTo(c.X+dx1, c.Y+dy1, c.X+dx2, c.Y+dy2, c.X+dx3, c.Y+dy3)
}

// Close ends the contour; the pen returns to its first point.
func (p *Path) Close() *Path {
	if p.Empty() {
		return p
	}
	p.Segments = append(p.Segments, Segment{Verb: VerbClose})
	p.cur = p.start
	return p
}

// ArcTo appends an arc of the ellipse inscribed in oval, from startDeg
// sweeping sweepDeg (positive is clockwise on a Y-down screen). The arc is
// joined to the current contour with a line, or starts one when the path
// is empty.
func (p *Path) ArcTo(oval Rect, startDeg, sweepDeg float64) *Path {
	s := arcPoint(oval, startDeg)
	if p.Empty() {
		p.MoveTo(s.X, s.Y)
	} else if s != p.cur {
		p.LineTo(s.X, s.Y)
	}
	p.appendArc(oval, startDeg, sweepDeg)
	return p
}

// AddArc appends an arc as a new contour.
func (p *Path) AddArc(oval Rect, startDeg, sweepDeg float64) *Path {
	s := arcPoint(oval, startDeg)
	p.MoveTo(s.X, s.Y)
	p.appendArc(oval, startDeg, sweepDeg)
	return p
}

// AddOval appends a closed ellipse contour.
func (p *Path) AddOval(oval Rect) *Path {
	return p.AddArc(oval, 0, 360).Close()
}

// AddRoundRect appends a closed rounded rectangle contour.
func (p *Path) AddRoundRect(r Rect, rx, ry float64) *Path {
	rx = math.Min(rx, r.Width()/2)
	ry = math.Min(ry, r.Height()/2)
	p.MoveTo(r.Left+rx, r.Top)
	p.LineTo(r.Right-rx, r.Top)
	p.appendArc(Rect{r.Right - 2*rx, r.Top, r.Right, r.Top + 2*ry}, -90, 90)
	p.LineTo(r.Right, r.Bottom-ry)
	p.appendArc(Rect{r.Right - 2*rx, r.Bottom - 2*ry, r.Right, r.Bottom}, 0, 90)
	p.LineTo(r.Left+rx, r.Bottom)
	p.appendArc(Rect{r.Left, r.Bottom - 2*ry, r.Left + 2*rx, r.Bottom}, 90, 90)
	p.LineTo(r.Left, r.Top+ry)
	p.appendArc(Rect{r.Left, r.Top, r.Left + 2*rx, r.Top + 2*ry}, 180, 90)
	return p.Close()
}

// AddPath appends every contour and glyph of o.
func (p *Path) AddPath(o *Path) *Path {
	for _, s := range o.Segments {
		p.Segments = append(p.Segments, Segment{Verb: s.Verb, Pts: append([]Point(nil), s.Pts...)})
	}
	p.Glyphs = append(p.Glyphs, o.Glyphs...)
	p.cur, p.start = o.cur, o.start
	return p
}

// Knockout registers a text run that is cut out of the filled path.
func (p *Path) Knockout(t Text) *Path {
	p.Glyphs = append(p.Glyphs, t)
	return p
}

// Transformed returns a copy of the path with m applied to every point.
// Knockout glyph anchors move with it.
func (p *Path) Transformed(m Affine) *Path {
	out := &Path{Segments: make([]Segment, len(p.Segments))}
	for i, s := range p.Segments {
		pts := make([]Point, len(s.Pts))
		for j, pt := range s.Pts {
			pts[j] = m.Apply(pt)
		}
		out.Segments[i] = Segment{Verb: s.Verb, Pts: pts}
	}
	for _, g := range p.Glyphs {
		g.Pos = m.Apply(g.Pos)
		out.Glyphs = append(out.Glyphs, g)
	}
	out.cur, out.start = m.Apply(p.cur), m.Apply(p.start)
	return out
}

func (p *Path) ensureStart() {
	if p.Empty() {
		p.MoveTo(0, 0)
	}
}

// appendArc adds cubic segments for the arc without touching the contour
// start. Each cubic spans at most 90 degrees.
func (p *Path) appendArc(oval Rect, startDeg, sweepDeg float64) {
	if sweepDeg == 0 {
		return
	}
	if sweepDeg > 360 {
		sweepDeg = 360
	} else if sweepDeg < -360 {
		sweepDeg = -360
	}
	c := oval.Center()
	rx, ry := oval.Width()/2, oval.Height()/2
	n := int(math.Ceil(math.Abs(sweepDeg) / 90))
	step := radians(sweepDeg) / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	a0 := radians(startDeg)
	for i := 0; i < n; i++ {
		a1 := a0 + step
		s0, c0 := math.Sincos(a0)
		s1, c1 := math.Sincos(a1)
		p.CubicTo(
			c.X+rx*(c0-k*s0), c.Y+ry*(s0+k*c0),
			c.X+rx*(c1+k*s1), c.Y+ry*(s1-k*c1),
			c.X+rx*c1, c.Y+ry*s1,
		)
		a0 = a1
	}
}

func arcPoint(oval Rect, deg float64) Point {
	c := oval.Center()
	s, co := math.Sincos(radians(deg))
	return Point{c.X + oval.Width()/2*co, c.Y + oval.Height()/2*s}
}

// Contour is a flattened polyline.
type Contour struct {
	Points []Point
	Closed bool
}

// Flatten converts the path to polylines after applying m. tol is the
// maximum chord length, in output units, used for cubics.
func (p *Path) Flatten(m Affine, tol float64) []Contour {
	if tol <= 0 {
		tol = 1
	}
	var (
		out  []Contour
		cur  *Contour
		pen  Point
		head Point
	)
	flush := func() {
		if cur != nil && len(cur.Points) > 1 {
			out = append(out, *cur)
		}
		cur = nil
	}
	for _, s := range p.Segments {
		switch s.Verb {
		case VerbMove:
			flush()
			pen = m.Apply(s.Pts[0])
			head = pen
			cur = &Contour{Points: []Point{pen}}
		case VerbLine:
			if cur == nil {
				cur = &Contour{Points: []Point{pen}}
				head = pen
			}
			pen = m.Apply(s.Pts[0])
			cur.Points = append(cur.Points, pen)
		case VerbCubic:
			if cur == nil {
				cur = &Contour{Points: []Point{pen}}
				head = pen
			}
			c1, c2, end := m.Apply(s.Pts[0]), m.Apply(s.Pts[1]), m.Apply(s.Pts[2])
			cur.Points = appendCubic(cur.Points, pen, c1, c2, end, tol)
			pen = end
		case VerbClose:
			if cur != nil {
				cur.Closed = true
				flush()
			}
			pen = head
		}
	}
	flush()
	return out
}

func appendCubic(dst []Point, p0, p1, p2, p3 Point, tol float64) []Point {
	l := dist(p0, p1) + dist(p1, p2) + dist(p2, p3)
	n := int(math.Ceil(l / tol))
	if n < 1 {
		n = 1
	} else if n > 256 {
		n = 256
	}
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		dst = append(dst, Point{
			X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
			Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		})
	}
	return dst
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
