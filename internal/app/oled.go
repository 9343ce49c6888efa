// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

const (
	oledWidth  = 128
	oledHeight = 64
	// the HUD keeps its 3:2 aspect on the left, status column on the right
	oledHUDWidth = 96
)

// oledPanel mirrors the HUD on a 128x64 SSD1306.
type oledPanel struct {
	dev *ssd1306.Dev
	img *image1bit.VerticalLSB
}

func newOLEDPanel(bus i2c.Bus) (*oledPanel, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306 init: %w", err)
	}
	p := &oledPanel{
		dev: dev,
		img: image1bit.NewVerticalLSB(image.Rect(0, 0, oledWidth, oledHeight)),
	}
	return p, nil
}

// Splash shows a waiting screen until the first frame.
func (p *oledPanel) Splash() error {
	clear1bit(p.img)
	drawer := &font.Drawer{
		Dst:  p.img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.P(22, 26)
	drawer.DrawString("Sphere HUD")
	drawer.Dot = fixed.P(15, 43)
	drawer.DrawString("waiting for")
	drawer.Dot = fixed.P(29, 56)
	drawer.DrawString("telemetry")
	return p.dev.Draw(p.dev.Bounds(), p.img, image.Point{})
}

// Show downsamples a rendered frame and writes the status column.
func (p *oledPanel) Show(frame image.Image, st telemetry.State) error {
	mirror(p.img, frame, st)
	return p.dev.Draw(p.dev.Bounds(), p.img, image.Point{})
}

func (p *oledPanel) Close() error {
	return p.dev.Halt()
}

// mirror fills dst (128x64) with frame scaled into the left area and short
// status lines on the right: speed, altitude, battery and satellites used.
func mirror(dst draw.Image, frame image.Image, st telemetry.State) {
	clear1bit(dst)
	hudRect := image.Rect(0, 0, oledHUDWidth, oledHeight)
	xdraw.ApproxBiLinear.Scale(dst, hudRect, frame, frame.Bounds(), draw.Src, nil)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	lines := []string{
		fmt.Sprintf("%4d", clampStatus(int(st.Speed))),
		fmt.Sprintf("%4d", clampStatus(int(st.Altitude))),
		fmt.Sprintf("%3d%%", st.Battery),
		fmt.Sprintf("G%2d", st.SatsUsed),
	}
	for i, l := range lines {
		drawer.Dot = fixed.P(oledHUDWidth+2, 13+i*16)
		drawer.DrawString(l)
	}
}

// clampStatus keeps a reading within four characters.
func clampStatus(v int) int {
	switch {
	case v > 9999:
		return 9999
	case v < -999:
		return -999
	}
	return v
}

func clear1bit(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{image1bit.Off}, image.Point{}, draw.Src)
}
