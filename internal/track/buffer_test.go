// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package track

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/sphere_hud/internal/gps"
)

// metersNorth offsets lat by roughly m meters.
func metersNorth(lat, m float64) float64 {
	return lat + m/111195.0
}

func fixAt(lat, lon, accuracy float64) gps.Fix {
	return gps.Fix{Latitude: lat, Longitude: lon, Accuracy: accuracy, Available: true}
}

func TestRingOrderAndOverwrite(t *testing.T) {
	r := NewRing(3)
	assert.Zero(t, r.Len())
	assert.Equal(t, Sample{}, r.At(0))

	for i := 1; i <= 5; i++ {
		r.Push(Sample{Distance: float64(i)})
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 5.0, r.At(0).Distance)
	assert.Equal(t, 4.0, r.At(1).Distance)
	assert.Equal(t, 3.0, r.At(2).Distance)
	assert.Equal(t, Sample{}, r.At(3))
	assert.Equal(t, []Sample{{Distance: 5}, {Distance: 4}, {Distance: 3}}, r.Snapshot())
}

func TestBufferFirstFixOnlyPrimes(t *testing.T) {
	b := NewBuffer(0)
	assert.False(t, b.Observe(fixAt(48, 11, 5)))
	assert.Zero(t, b.Len())
}

func TestBufferSuppressesMovementWithinAccuracy(t *testing.T) {
	b := NewBuffer(0)
	b.Observe(fixAt(48, 11, 5))

	// 3 m with 5 m accuracy: ignored, and the retained fix stays put.
	assert.False(t, b.Observe(fixAt(metersNorth(48, 3), 11, 5)))
	assert.Zero(t, b.Len())

	// Another 3 m: 6 m from the retained fix, so it counts.
	require.True(t, b.Observe(fixAt(metersNorth(48, 6), 11, 5)))
	_, hist := b.RangeAndHistory()
	require.Len(t, hist, 1)
	assert.InDelta(t, 6, hist[0].Distance, 0.01)
	assert.InDelta(t, 0, hist[0].Bearing, 1e-6)
}

func TestBufferUnavailableFixesBreakTheTrack(t *testing.T) {
	b := NewBuffer(0)
	b.Observe(fixAt(48, 11, 1))

	lost := fixAt(metersNorth(48, 10), 11, 1)
	lost.Available = false
	assert.False(t, b.Observe(lost))

	// The unavailable fix was retained, so the first fix after the gap
	// only re-primes.
	assert.False(t, b.Observe(fixAt(metersNorth(48, 20), 11, 1)))
	assert.True(t, b.Observe(fixAt(metersNorth(48, 30), 11, 1)))
	assert.Equal(t, 1, b.Len())
}

func TestBufferIsBounded(t *testing.T) {
	b := NewBuffer(0)
	lat := 48.0
	b.Observe(fixAt(lat, 11, 1))
	for i := 0; i < Capacity+5; i++ {
		lat = metersNorth(lat, 2)
		require.True(t, b.Observe(fixAt(lat, 11, 1)))
	}
	assert.Equal(t, Capacity, b.Len())
	_, hist := b.RangeAndHistory()
	assert.Len(t, hist, Capacity)
}

func TestSelectRangeHysteresis(t *testing.T) {
	tests := []struct {
		name     string
		longest  float64
		expected Range
	}{
		{"idle", 0, RangeSmall},
		{"walking", 1.99, RangeSmall},
		{"medium threshold", 2, RangeMedium},
		{"cycling", 9.9, RangeMedium},
		{"large threshold", 10, RangeLarge},
		{"driving", 30, RangeLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRing(Capacity)
			r.Push(Sample{Distance: tc.longest})
			r.Push(Sample{Distance: 0.5})
			assert.Equal(t, tc.expected, SelectRange(r, DefaultRangeDivisor))
		})
	}
}

func TestSelectRangeOnlyLooksAtRecentWindow(t *testing.T) {
	r := NewRing(Capacity)
	r.Push(Sample{Distance: 50})
	for i := 0; i < RangeWindow; i++ {
		r.Push(Sample{Distance: 1})
	}
	assert.Equal(t, RangeSmall, SelectRange(r, DefaultRangeDivisor))

	r.Push(Sample{Distance: 3})
	assert.Equal(t, RangeMedium, SelectRange(r, DefaultRangeDivisor))
}

func TestSelectRangeCustomDivisor(t *testing.T) {
	r := NewRing(Capacity)
	r.Push(Sample{Distance: 5})
	assert.Equal(t, RangeMedium, SelectRange(r, 50))
	assert.Equal(t, RangeSmall, SelectRange(r, 10))
	assert.Equal(t, RangeLarge, SelectRange(r, 100))
}

func TestRangeText(t *testing.T) {
	assert.Equal(t, "S", RangeSmall.Letter())
	assert.Equal(t, 100.0, RangeMedium.Radius())
	assert.Equal(t, "L(500m)", RangeLarge.String())

	b, err := json.Marshal(struct{ R Range }{RangeMedium})
	require.NoError(t, err)
	assert.JSONEq(t, `{"R":"M"}`, string(b))

	var back struct{ R Range }
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, RangeMedium, back.R)
}
