// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package track

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/sphere_hud/internal/gps"
)

const (
	// Capacity is the number of segments kept for the radar.
	Capacity = 60
	// RangeWindow is how many recent segments select the radar range.
	RangeWindow = 20
	// DefaultRangeDivisor scales the range thresholds.
	DefaultRangeDivisor = 50.0
)

// Range is the radar scale.
type Range int

const (
	RangeSmall Range = iota
	RangeMedium
	RangeLarge
)

var rangeRadius = [...]float64{RangeSmall: 20, RangeMedium: 100, RangeLarge: 500}

// Radius is the radar radius in meters.
func (r Range) Radius() float64 {
	if r < RangeSmall || r > RangeLarge {
		return rangeRadius[RangeSmall]
	}
	return rangeRadius[r]
}

// Letter is the single character shown next to the radar.
func (r Range) Letter() string {
	switch r {
	case RangeMedium:
		return "M"
	case RangeLarge:
		return "L"
	}
	return "S"
}

func (r Range) String() string {
	return fmt.Sprintf("%s(%.0fm)", r.Letter(), r.Radius())
}

// MarshalText encodes the range as its letter.
func (r Range) MarshalText() ([]byte, error) {
	return []byte(r.Letter()), nil
}

// UnmarshalText accepts S, M or L.
func (r *Range) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "S", "":
		*r = RangeSmall
	case "M":
		*r = RangeMedium
	case "L":
		*r = RangeLarge
	default:
		return fmt.Errorf("unknown radar range %q", b)
	}
	return nil
}

// Buffer turns a stream of fixes into radar track segments.
type Buffer struct {
	ring    *Ring
	divisor float64

	prevLat, prevLon float64
	prevAvailable    bool
}

// NewBuffer returns a buffer with the standard capacity. A divisor of zero
// selects DefaultRangeDivisor.
func NewBuffer(divisor float64) *Buffer {
	if divisor <= 0 {
		divisor = DefaultRangeDivisor
	}
	return &Buffer{ring: NewRing(Capacity), divisor: divisor}
}

// Observe feeds one fix. Movement within the fix accuracy is ignored.
// Otherwise a segment is appended when both the retained fix and this one
// are available, and this fix becomes the retained one. It reports whether
// a segment was appended.
func (b *Buffer) Observe(f gps.Fix) bool {
	dist := gps.Distance(b.prevLat, b.prevLon, f.Latitude, f.Longitude)
	if dist <= f.Accuracy {
		return false
	}

	appended := false
	if b.prevAvailable && f.Available {
		b.ring.Push(Sample{
			Distance: dist,
			Bearing:  gps.Bearing(b.prevLat, b.prevLon, f.Latitude, f.Longitude),
		})
		appended = true
	}

	b.prevLat, b.prevLon = f.Latitude, f.Longitude
	b.prevAvailable = f.Available
	return appended
}

// Len is the number of stored segments.
func (b *Buffer) Len() int { return b.ring.Len() }

// RangeAndHistory selects the radar range from the recent segments and
// returns the stored history, most recent first.
func (b *Buffer) RangeAndHistory() (Range, []Sample) {
	return SelectRange(b.ring, b.divisor), b.ring.Snapshot()
}

// SelectRange picks the radar range from the largest of the most recent
// RangeWindow segments.
func SelectRange(r *Ring, divisor float64) Range {
	if divisor <= 0 {
		divisor = DefaultRangeDivisor
	}
	var longest float64
	for i := 0; i < RangeWindow; i++ {
		if d := r.At(i).Distance; d > longest {
			longest = d
		}
	}
	switch {
	case longest >= rangeRadius[RangeLarge]/divisor:
		return RangeLarge
	case longest >= rangeRadius[RangeMedium]/divisor:
		return RangeMedium
	}
	return RangeSmall
}
