// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package window shows hud frames in a desktop window.
package window

import (
	"context"
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/relabs-tech/sphere_hud/internal/hud"
	"github.com/relabs-tech/sphere_hud/internal/raster"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// Config sizes the window.
type Config struct {
	Width      int
	Height     int
	Fullscreen bool
	Title      string
	// TPS is the number of Update calls per second; each renders a frame.
	TPS int
}

// Game is the ebiten game: every Update pulls a snapshot and renders a
// frame, every Draw replays the last frame on the screen.
type Game struct {
	ctx      context.Context
	source   telemetry.Source
	renderer *hud.Renderer
	faces    *raster.Faces
	logger   *slog.Logger

	width, height int
	frame         hud.Frame
	hasData       bool

	white    *ebiten.Image
	layer    *ebiten.Image
	clip     *ebiten.Image
	knock    *ebiten.Image
	noise    *ebiten.Image
	noiseSrc any
	vertices []ebiten.Vertex
	indices  []uint16
}

// NewGame returns a game reading from source.
func NewGame(ctx context.Context, source telemetry.Source, renderer *hud.Renderer, logger *slog.Logger) (*Game, error) {
	faces, err := raster.NewFaces()
	if err != nil {
		return nil, err
	}
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &Game{
		ctx:      ctx,
		source:   source,
		renderer: renderer,
		faces:    faces,
		logger:   logger,
		white:    white,
	}, nil
}

// Run opens the window and blocks until it is closed or the game context
// is done.
func Run(cfg Config, g *Game) error {
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.Fullscreen {
		ebiten.SetFullscreen(true)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	return ebiten.RunGame(g)
}

// Update renders the next frame from the newest snapshot.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	st, ok := g.source.Snapshot(g.ctx)
	if !ok {
		return nil
	}
	if !g.hasData {
		g.logger.Info("window: telemetry available", "seq", st.Seq)
		g.hasData = true
	}
	g.frame = g.renderer.RenderFrame(st, g.width, g.height)
	return nil
}

// Layout keeps the screen at the window size so the frame transform does
// the scaling.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Draw replays the current frame.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if !g.hasData {
		ebitenutil.DebugPrintAt(screen, "waiting for telemetry...", 10, 10)
		return
	}
	m := g.frame.Transform.Affine()
	scale := math.Abs(g.frame.Transform.Scale)
	for _, p := range g.frame.Primitives {
		if p.Clip != nil {
			g.drawClipped(screen, p, m, scale)
			continue
		}
		g.drawPrimitive(screen, p, m, scale)
	}
}

func (g *Game) drawPrimitive(dst *ebiten.Image, p hud.Primitive, m hud.Affine, scale float64) {
	switch p.Kind {
	case hud.KindStroke:
		if p.Path != nil {
			g.strokePath(dst, p.Path, m, float32(math.Max(p.Paint.StrokeWidth*scale, 1)), p.Paint.Color)
		}
	case hud.KindFill:
		if p.Path == nil {
			return
		}
		if len(p.Path.Glyphs) == 0 {
			g.fillPath(dst, p.Path, m, p.Paint.Color)
			return
		}
		g.knock = fit(g.knock, dst)
		g.knock.Clear()
		g.fillPath(g.knock, p.Path, m, p.Paint.Color)
		for _, t := range p.Path.Glyphs {
			g.drawText(g.knock, t, m, scale, p.Paint.Color, ebiten.BlendDestinationOut)
		}
		dst.DrawImage(g.knock, nil)
	case hud.KindText, hud.KindTextOnPath:
		if p.Text != nil {
			g.drawText(dst, *p.Text, m, scale, p.Paint.Color, ebiten.BlendSourceOver)
		}
	case hud.KindImage:
		if p.Image != nil {
			g.drawImage(dst, *p.Image, m)
		}
	}
}

// drawClipped draws p on an offscreen layer, then keeps only the part
// inside its clip path.
func (g *Game) drawClipped(dst *ebiten.Image, p hud.Primitive, m hud.Affine, scale float64) {
	g.layer = fit(g.layer, dst)
	g.clip = fit(g.clip, dst)
	g.layer.Clear()
	g.clip.Clear()
	g.drawPrimitive(g.layer, p, m, scale)
	g.fillPath(g.clip, p.Clip, m, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	g.clip.DrawImage(g.layer, &ebiten.DrawImageOptions{Blend: ebiten.BlendSourceIn})
	dst.DrawImage(g.clip, nil)
}

func (g *Game) buildPath(p *hud.Path, m hud.Affine) *vector.Path {
	var vp vector.Path
	for _, s := range p.Segments {
		switch s.Verb {
		case hud.VerbMove:
			a := m.Apply(s.Pts[0])
			vp.MoveTo(float32(a.X), float32(a.Y))
		case hud.VerbLine:
			a := m.Apply(s.Pts[0])
			vp.LineTo(float32(a.X), float32(a.Y))
		case hud.VerbCubic:
			a, b, c := m.Apply(s.Pts[0]), m.Apply(s.Pts[1]), m.Apply(s.Pts[2])
			vp.CubicTo(float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(c.X), float32(c.Y))
		case hud.VerbClose:
			vp.Close()
		}
	}
	return &vp
}

// fillPath fills even-odd. Non-zero fills in a frame are single convex
// contours, for which both rules agree.
func (g *Game) fillPath(dst *ebiten.Image, p *hud.Path, m hud.Affine, c color.NRGBA) {
	g.vertices, g.indices = g.buildPath(p, m).AppendVerticesAndIndicesForFilling(g.vertices[:0], g.indices[:0])
	g.paint(c)
	dst.DrawTriangles(g.vertices, g.indices, g.white, &ebiten.DrawTrianglesOptions{
		FillRule:  ebiten.EvenOdd,
		AntiAlias: true,
	})
}

func (g *Game) strokePath(dst *ebiten.Image, p *hud.Path, m hud.Affine, width float32, c color.NRGBA) {
	op := &vector.StrokeOptions{Width: width, LineJoin: vector.LineJoinRound}
	g.vertices, g.indices = g.buildPath(p, m).AppendVerticesAndIndicesForStroke(g.vertices[:0], g.indices[:0], op)
	g.paint(c)
	dst.DrawTriangles(g.vertices, g.indices, g.white, &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
}

func (g *Game) paint(c color.NRGBA) {
	for i := range g.vertices {
		g.vertices[i].SrcX = 1
		g.vertices[i].SrcY = 1
		g.vertices[i].ColorR = float32(c.R) / 0xff
		g.vertices[i].ColorG = float32(c.G) / 0xff
		g.vertices[i].ColorB = float32(c.B) / 0xff
		g.vertices[i].ColorA = float32(c.A) / 0xff
	}
}

func (g *Game) drawText(dst *ebiten.Image, t hud.Text, m hud.Affine, scale float64, c color.NRGBA, blend ebiten.Blend) {
	size := t.Size * scale
	if t.S == "" || size < 1 {
		return
	}
	face := g.faces.Face(t.Face, size)
	adv := float64(font.MeasureString(face, t.S)) / 64
	shift := 0.0
	switch t.Align {
	case hud.AlignCenter:
		shift = adv / 2
	case hud.AlignRight:
		shift = adv
	}
	op := &ebiten.DrawImageOptions{Blend: blend}
	op.GeoM.Translate(-shift, 0)
	op.GeoM.Scale(1/scale, 1/scale)
	op.GeoM.Rotate(t.Angle * math.Pi / 180)
	op.GeoM.Translate(t.Pos.X, t.Pos.Y)
	op.GeoM.Concat(geoM(m))
	op.ColorScale.ScaleWithColor(c)
	text.DrawWithOptions(dst, t.S, face, op)
}

func (g *Game) drawImage(dst *ebiten.Image, im hud.Image, m hud.Affine) {
	if im.Src == nil || im.Alpha == 0 || im.SrcRect.Empty() {
		return
	}
	if g.noise == nil || g.noiseSrc != any(im.Src) {
		g.noise = ebiten.NewImageFromImage(im.Src)
		g.noiseSrc = im.Src
	}
	sub := g.noise.SubImage(im.SrcRect).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(im.Dst.Width()/float64(im.SrcRect.Dx()), im.Dst.Height()/float64(im.SrcRect.Dy()))
	op.GeoM.Translate(im.Dst.Left, im.Dst.Top)
	op.GeoM.Concat(geoM(m))
	op.ColorScale.ScaleAlpha(float32(im.Alpha) / 0xff)
	dst.DrawImage(sub, op)
}

// fit returns img when it matches the size of like, otherwise a new image.
func fit(img, like *ebiten.Image) *ebiten.Image {
	b := like.Bounds()
	if img != nil && img.Bounds().Dx() == b.Dx() && img.Bounds().Dy() == b.Dy() {
		return img
	}
	return ebiten.NewImage(b.Dx(), b.Dy())
}

func geoM(m hud.Affine) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m.A)
	g.SetElement(0, 1, m.B)
	g.SetElement(0, 2, m.C)
	g.SetElement(1, 0, m.D)
	g.SetElement(1, 1, m.E)
	g.SetElement(1, 2, m.F)
	return g
}
