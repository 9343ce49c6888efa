// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hud

import (
	"image"
	"math/rand/v2"
)

const (
	// NoiseSize is the side of the generated noise bitmap in pixels.
	NoiseSize  = 1024
	noiseTiles = 4
	// NoiseImageName identifies the noise bitmap in image primitives.
	NoiseImageName = "noise"
)

// NewNoiseImage returns a grey noise bitmap. The same seed always gives
// the same bitmap.
func NewNoiseImage(seed uint64) *image.Gray {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewGray(image.Rect(0, 0, NoiseSize, NoiseSize))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.UintN(256))
	}
	return img
}

// drawNoise tiles one pseudo-randomly chosen window of the noise bitmap
// over the whole canvas, 4x4 times. The window row is aligned to 4 px.
func drawNoise(out []Primitive, noise *image.Gray, rng *rand.Rand, canvasW, canvasH int, borderX, borderY float64, alpha uint8) []Primitive {
	if alpha == 0 || noise == nil {
		return out
	}
	b := noise.Bounds()
	w, h := canvasW/noiseTiles, canvasH/noiseTiles
	if w <= 0 || h <= 0 {
		return out
	}
	left := rng.IntN(max(b.Dx()-w, 1))
	top := rng.IntN(max(b.Dy()-h, 1)) / 4 * 4
	src := image.Rect(left, top, left+w, top+h).Intersect(b)

	for y := 0; y < noiseTiles; y++ {
		for x := 0; x < noiseTiles; x++ {
			dst := Rect{
				Left:   float64(x * w),
				Top:    float64(y * h),
				Right:  float64((x + 1) * w),
				Bottom: float64((y + 1) * h),
			}.Offset(-borderX, -borderY)
			out = append(out, Primitive{
				Kind:  KindImage,
				Paint: Paint{Color: withAlpha(colorDefault, alpha)},
				Image: &Image{
					Name:    NoiseImageName,
					Src:     noise,
					SrcRect: src,
					Dst:     dst,
					Alpha:   alpha,
				},
			})
		}
	}
	return out
}
