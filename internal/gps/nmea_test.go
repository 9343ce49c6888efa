// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sentenceGGA  = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"
	sentenceGSA  = "$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39"
	sentenceGSV  = "$GPGSV,2,1,08,01,40,083,46,02,17,308,41,12,07,344,39,14,22,228,45*75"
	sentenceGLSV = "$GLGSV,1,1,03,65,40,083,46,66,17,308,41,67,07,344,39*5F"
	sentenceRMC  = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"
	sentenceVoid = "$GPRMC,123520,V,4807.038,N,01131.000,E,000.0,000.0,230394,,*00"
)

func TestAssemblerCombinesCycle(t *testing.T) {
	asm := NewAssembler()
	for _, line := range []string{sentenceGGA, sentenceGSA, sentenceGSV, sentenceGLSV} {
		_, ok, err := asm.Feed(line)
		require.NoError(t, err)
		require.False(t, ok, "only RMC completes a fix")
	}

	fix, ok, err := asm.Feed(sentenceRMC + "\r\n")
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, fix.Available)
	assert.InDelta(t, 48.1173, fix.Latitude, 1e-4)
	assert.InDelta(t, 11.516666, fix.Longitude, 1e-4)
	assert.InDelta(t, 545.4, fix.Altitude, 1e-9)
	assert.InDelta(t, 22.4, fix.SpeedKnots, 1e-9)
	assert.InDelta(t, 22.4*1.852, fix.SpeedKMH(), 1e-9)
	assert.InDelta(t, 84.4, fix.CourseDeg, 1e-9)
	assert.True(t, fix.HasCourse)
	assert.InDelta(t, -3.1, fix.Variation, 1e-9)
	assert.InDelta(t, 1.3*DefaultUERE, fix.Accuracy, 1e-9)
	assert.Equal(t, 8, fix.SatsUsed)
	assert.Equal(t, 11, fix.SatsInView)
	assert.Equal(t, time.Date(1994, time.March, 23, 12, 35, 19, 0, time.UTC), fix.Time)
}

func TestAssemblerVoidFix(t *testing.T) {
	asm := NewAssembler()
	fix, ok, err := asm.Feed(sentenceVoid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, fix.Available)
	assert.False(t, fix.HasCourse)
	assert.Zero(t, fix.Accuracy)
}

func TestAssemblerSkipsNoise(t *testing.T) {
	asm := NewAssembler()

	_, ok, err := asm.Feed("")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = asm.Feed("garbage before the first sentence")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = asm.Feed("$GPRMC,123519,A,4807.038,N*00")
	assert.Error(t, err)
}

func TestScanDeliversFixes(t *testing.T) {
	input := strings.Join([]string{
		sentenceGGA, "$GPRMC,broken*00", sentenceRMC, sentenceVoid,
	}, "\r\n") + "\r\n"

	var fixes []Fix
	var errs int
	err := Scan(context.Background(), strings.NewReader(input), NewAssembler(),
		func(f Fix) { fixes = append(fixes, f) },
		func(error) { errs++ })

	require.NoError(t, err)
	require.Len(t, fixes, 2)
	assert.True(t, fixes[0].Available)
	assert.False(t, fixes[1].Available)
	assert.Equal(t, 1, errs)
}
