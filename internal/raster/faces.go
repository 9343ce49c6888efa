// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package raster

import (
	"fmt"
	"math"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/gomonobold"

	"github.com/relabs-tech/sphere_hud/internal/hud"
)

type faceKey struct {
	face hud.Face
	size int // 1/4 px
}

// Faces maps HUD faces to sized font faces. Not safe for concurrent use.
type Faces struct {
	fonts map[hud.Face]*truetype.Font
	cache map[faceKey]font.Face
}

// NewFaces parses the embedded Go fonts.
func NewFaces() (*Faces, error) {
	f := &Faces{
		fonts: make(map[hud.Face]*truetype.Font),
		cache: make(map[faceKey]font.Face),
	}
	for face, ttf := range map[hud.Face][]byte{
		hud.FaceReading: gobolditalic.TTF,
		hud.FaceSmall:   gobold.TTF,
		hud.FaceCompass: gomonobold.TTF,
	} {
		parsed, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font for face %d: %w", face, err)
		}
		f.fonts[face] = parsed
	}
	return f, nil
}

// Face returns face at size pixels, rounded to a quarter pixel.
func (f *Faces) Face(face hud.Face, size float64) font.Face {
	key := faceKey{face: face, size: int(math.Round(size * 4))}
	if ff, ok := f.cache[key]; ok {
		return ff
	}
	ttf, ok := f.fonts[face]
	if !ok {
		ttf = f.fonts[hud.FaceSmall]
	}
	ff := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(key.size) / 4,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	f.cache[key] = ff
	return ff
}
