// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/sphere_hud/internal/telemetry"
	"github.com/relabs-tech/sphere_hud/internal/track"
)

var fixedNow = time.Date(2026, 3, 1, 12, 34, 0, 0, time.UTC)

// frameOpts compares frames by primitive content. Image blits are matched
// on Name and SrcRect; walking the noise bitmap itself is slow.
var frameOpts = cmp.Options{
	cmp.AllowUnexported(Path{}),
	cmpopts.IgnoreFields(Image{}, "Src"),
}

func newTestRenderer() *Renderer {
	return NewRenderer(Options{Now: func() time.Time { return fixedNow }, Seed: 7})
}

// finishSweep renders until the start-up sweep is over.
func finishSweep(t *testing.T, r *Renderer) {
	t.Helper()
	for i := 0; i <= SweepTicks; i++ {
		r.RenderFrame(telemetry.State{}, 960, 640)
	}
	require.True(t, r.SweepDone())
}

func texts(f Frame) []string {
	var out []string
	for _, p := range f.Primitives {
		if p.Kind == KindText || p.Kind == KindTextOnPath {
			out = append(out, p.Text.S)
		}
	}
	return out
}

func count(f Frame, k Kind) int {
	n := 0
	for _, p := range f.Primitives {
		if p.Kind == k {
			n++
		}
	}
	return n
}

func TestFitTransform(t *testing.T) {
	tr := FitTransform(1920, 1080, false)
	assert.InDelta(t, 1.6875, tr.Scale, 1e-12)
	assert.Equal(t, 960.0, tr.TX)
	assert.Equal(t, 540.0, tr.TY)

	tr = FitTransform(481, 641, false)
	assert.InDelta(t, 481.0/960, tr.Scale, 1e-12)
	assert.Equal(t, 240.0, tr.TX)
	assert.Equal(t, 320.0, tr.TY)
}

func TestRenderFrameFlipOnlyMirrorsTransform(t *testing.T) {
	a, b := newTestRenderer(), newTestRenderer()
	st := telemetry.State{Roll: 12, Pitch: -8, Heading: 40, Speed: 30}

	plain := a.RenderFrame(st, 800, 600)
	st.FlipVertical = true
	flipped := b.RenderFrame(st, 800, 600)

	assert.False(t, plain.Transform.FlipY)
	assert.True(t, flipped.Transform.FlipY)
	assert.Equal(t, plain.Transform.Scale, flipped.Transform.Scale)
	assert.Empty(t, cmp.Diff(plain.Primitives, flipped.Primitives, frameOpts))
}

func TestRenderFrameEmptySurface(t *testing.T) {
	r := newTestRenderer()

	f := r.RenderFrame(telemetry.State{Seq: 3}, 0, 480)
	assert.True(t, f.Empty())
	assert.Equal(t, uint64(3), f.Seq)

	// the sweep did not advance
	first := r.RenderFrame(telemetry.State{}, 960, 640)
	assert.Contains(t, texts(first), "2777")
	assert.Equal(t, noiseTiles*noiseTiles, count(first, KindImage))
}

func TestCompassBreaksAtNearPlane(t *testing.T) {
	out := drawCompass(nil, 0, 0, 0)
	require.NotEmpty(t, out)

	ring := out[len(out)-1]
	require.Equal(t, KindStroke, ring.Kind)
	moves, lines := 0, 0
	for _, s := range ring.Path.Segments {
		switch s.Verb {
		case VerbMove:
			moves++
		case VerbLine:
			lines++
		}
	}
	// level attitude: points 19..23 and 0..5 are in front of the eye, the
	// loop meets the near plane once behind the viewer
	assert.Equal(t, 2, moves)
	assert.Equal(t, 10, lines)

	var labels []string
	for _, p := range out[:len(out)-1] {
		require.Equal(t, KindTextOnPath, p.Kind)
		require.Len(t, p.Along, 2)
		labels = append(labels, p.Text.S)
	}
	assert.Equal(t, []string{"N", "NE", "NW"}, labels)
}

func TestCompassYawMovesNorth(t *testing.T) {
	label := func(yaw int) Primitive {
		for _, p := range drawCompass(nil, 0, 0, yaw) {
			if p.Kind == KindTextOnPath && p.Text.S == "N" {
				return p
			}
		}
		t.Fatalf("no N label at yaw %d", yaw)
		return Primitive{}
	}
	// turning right moves north to the left of the screen
	assert.Less(t, label(30).Text.Pos.X, label(0).Text.Pos.X)
}

func TestPitchLadderZeroTick(t *testing.T) {
	ticks := pitchTicks(0)
	require.Len(t, ticks, 11)

	zero := ticks[5]
	assert.Equal(t, 0, zero.deg)
	assert.Equal(t, 50, zero.length)
	assert.Equal(t, uint8(255), zero.alpha)
	assert.Equal(t, ladderVertex, zero.x)

	top := ticks[0]
	assert.Equal(t, -50, top.deg)
	assert.Equal(t, 50, top.length)
	assert.Equal(t, uint8(10*255/60), top.alpha)
	assert.Equal(t, -300, top.y)
}

func TestPitchLadderZeroTickOffCentre(t *testing.T) {
	ticks := pitchTicks(-55)

	// the horizon tick sits at +55 and is drawn long
	last := ticks[len(ticks)-1]
	assert.Equal(t, 55, last.deg)
	assert.Equal(t, 50+82, last.length)
	assert.Equal(t, uint8(5*255/60), last.alpha)
	for _, tk := range ticks[:len(ticks)-1] {
		assert.Equal(t, absInt(tk.deg), tk.length)
	}
}

func TestPitchReadout(t *testing.T) {
	out := drawPitchLadder(nil, 0, -7)
	var labels []string
	for _, p := range out {
		if p.Kind == KindText {
			labels = append(labels, p.Text.S)
		}
	}
	assert.Equal(t, []string{"-07", "-07"}, labels)

	out = drawPitchLadder(nil, 0, 12)
	assert.Equal(t, " 12", out[len(out)-1].Text.S)
}

func TestNeedleClamp(t *testing.T) {
	speed := NewSpeedNeedle()
	assert.InDelta(t, 90, speed.Advance(100), 1e-9)
	assert.InDelta(t, 0, speed.Advance(100), 1e-9)
	assert.InDelta(t, 90, speed.Advance(-100), 1e-9)
	assert.InDelta(t, 95, speed.Advance(0.5), 1e-9)

	alt := NewAltitudeNeedle()
	assert.InDelta(t, 12.5, alt.Advance(1000), 1e-9)
	assert.InDelta(t, 18.75, alt.Advance(50), 1e-9)
	assert.InDelta(t, 6.25, alt.Advance(-1e6), 1e-9)
	assert.InDelta(t, 6.25-12.5+25, alt.Advance(-100), 1e-9)
}

func TestSweepRunsOnceThenHandsOff(t *testing.T) {
	r := newTestRenderer()
	live := telemetry.State{Speed: 42, Altitude: 120, Battery: 80, Accuracy: 3.2}

	first := r.RenderFrame(live, 960, 640)
	assert.Contains(t, texts(first), "2777")
	assert.Contains(t, texts(first), "99999")
	assert.Contains(t, texts(first), "500")

	for i := 1; i <= SweepTicks; i++ {
		r.RenderFrame(live, 960, 640)
	}
	require.True(t, r.SweepDone())

	for i := 0; i < 3; i++ {
		f := r.RenderFrame(live, 960, 640)
		got := texts(f)
		assert.Contains(t, got, "42")
		assert.Contains(t, got, "120")
		assert.Contains(t, got, "80")
		assert.Contains(t, got, "4")
		assert.NotContains(t, got, "2777")
		assert.Zero(t, count(f, KindImage))
	}
}

func TestNoiseAlphaFollowsSweep(t *testing.T) {
	r := newTestRenderer()
	var alphas []uint8
	for i := 0; i <= SweepTicks; i++ {
		f := r.RenderFrame(telemetry.State{}, 960, 640)
		var a uint8
		for _, p := range f.Primitives {
			if p.Kind == KindImage {
				a = p.Image.Alpha
				assert.Equal(t, NoiseImageName, p.Image.Name)
				assert.Equal(t, 960/noiseTiles, p.Image.SrcRect.Dx())
				assert.Zero(t, p.Image.SrcRect.Min.Y%4)
			}
		}
		alphas = append(alphas, a)
	}
	assert.Equal(t, uint8(255), alphas[0])
	assert.Equal(t, uint8(127), alphas[15])
	assert.Equal(t, uint8(0), alphas[SweepTicks])
	for i := 1; i < len(alphas); i++ {
		assert.LessOrEqual(t, alphas[i], alphas[i-1])
	}
}

func TestNoiseTilesCoverCanvas(t *testing.T) {
	r := newTestRenderer()
	f := r.RenderFrame(telemetry.State{}, 1920, 640)

	var tiles []Rect
	for _, p := range f.Primitives {
		if p.Kind == KindImage {
			tiles = append(tiles, p.Image.Dst)
		}
	}
	require.Len(t, tiles, 16)
	// 1920x640 at scale 1 is 1920 logical units wide
	assert.Equal(t, -960.0, tiles[0].Left)
	assert.Equal(t, -320.0, tiles[0].Top)
	assert.Equal(t, 960.0, tiles[15].Right)
	assert.Equal(t, 320.0, tiles[15].Bottom)
}

func TestHideGaugesSkipsPanels(t *testing.T) {
	r := newTestRenderer()
	finishSweep(t, r)

	f := r.RenderFrame(telemetry.State{HideGauges: true, Speed: 55}, 960, 640)
	assert.Zero(t, count(f, KindFill))
	assert.NotContains(t, texts(f), "55")

	shown := r.RenderFrame(telemetry.State{Speed: 55}, 960, 640)
	assert.Positive(t, count(shown, KindFill))
	assert.Contains(t, texts(shown), "55")
}

func TestGaugeLabels(t *testing.T) {
	r := newTestRenderer()
	finishSweep(t, r)

	f := r.RenderFrame(telemetry.State{SatsUsed: 7, SatsTotal: 12, Accuracy: 10.1}, 960, 640)
	got := texts(f)
	assert.Contains(t, got, "GPS  7/12")
	assert.Contains(t, got, "12:34")
	assert.Contains(t, got, "11")

	var knockouts []string
	for _, p := range f.Primitives {
		if p.Path != nil {
			for _, g := range p.Path.Glyphs {
				knockouts = append(knockouts, g.S)
			}
		}
	}
	assert.Equal(t, []string{"HUD", "S", "%", "BATT", "ACCU"}, knockouts)
}

func TestRadarTrackRelativeToLatestBearing(t *testing.T) {
	history := []track.Sample{{Distance: 10, Bearing: 90}, {Distance: 5, Bearing: 0}}
	out := drawRadar(nil, track.RangeSmall, history, 4)

	var trail *Primitive
	for i := range out {
		if out[i].Clip != nil {
			trail = &out[i]
		}
	}
	require.NotNil(t, trail)
	assert.Equal(t, colorTrack, trail.Paint.Color)

	segs := trail.Path.Segments
	require.Len(t, segs, 3)
	c := radarRect.Inset(7, 7).Center()
	w := radarRect.Inset(7, 7).Width()
	// the latest segment trails straight down from the centre
	p1 := segs[1].Pts[0]
	assert.InDelta(t, c.X, p1.X, 1e-9)
	assert.InDelta(t, c.Y+10*w/20, p1.Y, 1e-9)
	// a bearing 90° lower than the latest one is drawn to the left
	p2 := segs[2].Pts[0]
	assert.InDelta(t, p1.X-5*w/20, p2.X, 1e-9)
	assert.InDelta(t, p1.Y, p2.Y, 1e-9)
}

func TestBatteryGaugeBranches(t *testing.T) {
	for _, v := range []float64{0, 0.1, 0.25, 0.5, 0.74, 0.75, 1} {
		p := batteryGauge(v)
		require.NotEmpty(t, p.Segments, "value %v", v)
		assert.Equal(t, Point{X: dmgBaseX, Y: dmgStraightSize + dmgRoundSize}, p.Segments[0].Pts[0], "value %v", v)
		// every branch returns to the start
		end := p.Current()
		assert.InDelta(t, dmgBaseX, end.X, 1e-6, "value %v", v)
		assert.InDelta(t, dmgStraightSize+dmgRoundSize, end.Y, 1e-6, "value %v", v)
	}
}

func TestTimerBlinker(t *testing.T) {
	contours := func(now time.Time) int {
		out := drawTimer(nil, now)
		return len(out[0].Path.Flatten(IdentityAffine, 1))
	}
	assert.Equal(t, 4, contours(fixedNow))
	assert.Equal(t, 3, contours(fixedNow.Add(250*time.Millisecond)))
}

func TestRenderFrameDeterministic(t *testing.T) {
	a, b := newTestRenderer(), newTestRenderer()
	st := telemetry.State{Roll: 3, Pitch: 4, Heading: 5, SpeedRate: 2, AltitudeRate: -1}
	for i := 0; i < 5; i++ {
		fa := a.RenderFrame(st, 1280, 720)
		fb := b.RenderFrame(st, 1280, 720)
		require.Empty(t, cmp.Diff(fa, fb, frameOpts))
	}
}

func TestRenderFrameLeavesStateAlone(t *testing.T) {
	r := newTestRenderer()
	st := telemetry.State{
		Seq:     9,
		Speed:   12,
		Range:   track.RangeMedium,
		Track:   []track.Sample{{Distance: 4, Bearing: 10}, {Distance: 2, Bearing: 20}},
		Battery: 33,
	}
	before := st
	before.Track = append([]track.Sample(nil), st.Track...)

	r.RenderFrame(st, 960, 640)
	assert.Empty(t, cmp.Diff(before, st))
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, 10, quantize(370.9))
	assert.Equal(t, -10, quantize(-370.9))
	assert.Equal(t, 0, quantize(720))
}

func TestFrameJSON(t *testing.T) {
	r := newTestRenderer()
	f := r.RenderFrame(telemetry.State{}, 640, 480)

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name":"noise"`)
	assert.NotContains(t, string(b), `"Pix"`)
}
