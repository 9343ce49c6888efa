// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineComposition(t *testing.T) {
	m := Translate(10, 0).Mul(Rotate(90))
	p := m.Apply(Point{X: 1, Y: 0})
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 1, p.Y, 1e-9)

	flip := FitTransform(960, 640, true).Affine()
	q := flip.Apply(Point{X: 0, Y: 10})
	assert.InDelta(t, 480, q.X, 1e-9)
	assert.InDelta(t, 310, q.Y, 1e-9)
}

func TestArcToStartsContourOnEmptyPath(t *testing.T) {
	p := new(Path).ArcTo(Rect{-10, -10, 10, 10}, 0, 90)

	require.NotEmpty(t, p.Segments)
	assert.Equal(t, VerbMove, p.Segments[0].Verb)
	assert.InDelta(t, 10, p.Segments[0].Pts[0].X, 1e-9)
	assert.InDelta(t, 0, p.Current().X, 1e-9)
	assert.InDelta(t, 10, p.Current().Y, 1e-9)
}

func TestArcToJoinsWithLine(t *testing.T) {
	p := new(Path).MoveTo(-50, 0).ArcTo(Rect{-10, -10, 10, 10}, 180, -90)

	require.GreaterOrEqual(t, len(p.Segments), 3)
	assert.Equal(t, VerbLine, p.Segments[1].Verb)
	assert.InDelta(t, -10, p.Segments[1].Pts[0].X, 1e-9)
	assert.InDelta(t, 0, p.Segments[1].Pts[0].Y, 1e-9)
	// counter-clockwise on screen from the left point ends at the bottom
	assert.InDelta(t, 0, p.Current().X, 1e-9)
	assert.InDelta(t, 10, p.Current().Y, 1e-9)
}

func TestOvalStaysOnEllipse(t *testing.T) {
	p := new(Path).AddOval(Rect{-100, -50, 100, 50})
	contours := p.Flatten(IdentityAffine, 2)

	require.Len(t, contours, 1)
	assert.True(t, contours[0].Closed)
	for _, pt := range contours[0].Points {
		e := pt.X*pt.X/(100*100) + pt.Y*pt.Y/(50*50)
		assert.InDelta(t, 1, e, 2e-3)
	}
}

func TestRoundRectContour(t *testing.T) {
	p := new(Path).AddRoundRect(Rect{0, 0, 160, 40}, 10, 10)
	contours := p.Flatten(IdentityAffine, 1)

	require.Len(t, contours, 1)
	c := contours[0]
	assert.True(t, c.Closed)
	for _, pt := range c.Points {
		assert.GreaterOrEqual(t, pt.X, -1e-9)
		assert.LessOrEqual(t, pt.X, 160+1e-9)
		assert.GreaterOrEqual(t, pt.Y, -1e-9)
		assert.LessOrEqual(t, pt.Y, 40+1e-9)
	}
}

func TestRelativeOpsFollowClose(t *testing.T) {
	p := new(Path).MoveTo(5, 5).RLineTo(10, 0).RLineTo(0, 10).Close()
	p.RLineTo(1, 1)

	last := p.Segments[len(p.Segments)-1]
	assert.Equal(t, Point{X: 6, Y: 6}, last.Pts[0])
}

func TestTransformedMovesGlyphs(t *testing.T) {
	p := new(Path).MoveTo(0, 0).LineTo(10, 0)
	p.Knockout(Text{S: "A", Pos: Point{X: 1, Y: 2}})

	q := p.Transformed(Translate(100, 200))
	assert.Equal(t, Point{X: 110, Y: 200}, q.Segments[1].Pts[0])
	assert.Equal(t, Point{X: 101, Y: 202}, q.Glyphs[0].Pos)
	// source untouched
	assert.Equal(t, Point{X: 10, Y: 0}, p.Segments[1].Pts[0])
}

func TestFlattenSplitsOnMove(t *testing.T) {
	p := new(Path).MoveTo(0, 0).LineTo(1, 0).MoveTo(5, 5).LineTo(6, 5).LineTo(6, 6)
	contours := p.Flatten(Scale(2, 2), 1)

	require.Len(t, contours, 2)
	assert.Len(t, contours[0].Points, 2)
	assert.Len(t, contours[1].Points, 3)
	assert.Equal(t, Point{X: 12, Y: 12}, contours[1].Points[2])
	assert.False(t, contours[1].Closed)
}

func TestPathJSON(t *testing.T) {
	p := new(Path).MoveTo(1, 2).CubicTo(3, 4, 5, 6, 7, 8).Close()
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var back Path
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p.Segments, back.Segments)
	assert.Contains(t, string(b), `"v":"C"`)
}

func TestCubicFlatteningEndsOnEndPoint(t *testing.T) {
	pts := appendCubic(nil, Point{}, Point{X: 0, Y: 10}, Point{X: 10, Y: 10}, Point{X: 10, Y: 0}, 0.5)
	end := pts[len(pts)-1]
	assert.InDelta(t, 10, end.X, 1e-9)
	assert.InDelta(t, 0, end.Y, 1e-9)
	assert.Greater(t, len(pts), 10)
	assert.False(t, math.IsNaN(end.X))
}
