// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/sphere_hud/internal/imu"
)

// Offset is the persisted calibration offset, subtracted from roll and pitch.
type Offset struct {
	Roll  int `json:"roll" yaml:"roll"`
	Pitch int `json:"pitch" yaml:"pitch"`
}

// OffsetStore persists the calibration offset between runs.
type OffsetStore interface {
	Offset() Offset
	SetOffset(Offset) error
}

// Turns holds the per-axis full-turn counters.
type Turns struct {
	Roll  int `json:"roll"`
	Pitch int `json:"pitch"`
	Yaw   int `json:"yaw"`
}

// State is the estimator output. Angles are in degrees and continuous:
// they grow past ±180 instead of wrapping. Roll and Pitch have the
// calibration offset removed. Heading is what the HUD should display as yaw.
type State struct {
	Roll    float64 `json:"roll"`
	Pitch   float64 `json:"pitch"`
	Yaw     float64 `json:"yaw"`
	Heading float64 `json:"heading"`
	Turns   Turns   `json:"turns"`
}

// Options configures an Estimator.
type Options struct {
	// UseBearing makes Heading follow the GPS bearing when one is known.
	UseBearing bool
	// Alpha is the low-pass smoothing factor. Zero means DefaultAlpha.
	Alpha float64
}

const (
	axisRoll = iota
	axisPitch
	axisYaw
)

// Estimator fuses accelerometer and magnetometer samples into smoothed,
// unwrapped roll/pitch/yaw. Update must be called from a single goroutine;
// calibration and bearing updates may come from any goroutine.
type Estimator struct {
	mu sync.Mutex

	unwrap [3]Unwrapper
	filter [3]LowPass

	store  OffsetStore
	offset Offset

	useBearing bool
	bearing    float64
	hasBearing bool

	last State
}

// NewEstimator creates an estimator. store may be nil, in which case
// offsets live in memory only.
func NewEstimator(opts Options, store OffsetStore) *Estimator {
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	e := &Estimator{
		store:      store,
		useBearing: opts.UseBearing,
	}
	for i := range e.filter {
		e.filter[i] = NewLowPass(alpha)
	}
	if store != nil {
		e.offset = store.Offset()
	}
	return e
}

// Update processes one sensor event. declination (degrees, east positive)
// is added to the magnetic azimuth. When the sample is degenerate the
// previous state is returned unchanged together with false.
func (e *Estimator) Update(s imu.RawSample, declination float64) (State, bool) {
	rm, ok := RotationMatrix(s.Accel, s.Mag)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !ok {
		return e.last, false
	}

	azimuth, pitch, roll := Angles(Remap(rm, s.Rotation))
	azimuth += declination

	raw := [3]float64{axisRoll: roll, axisPitch: pitch, axisYaw: azimuth}
	var smoothed [3]float64
	for i := range raw {
		smoothed[i] = e.filter[i].Filter(e.unwrap[i].Unwrap(raw[i]))
	}

	st := State{
		Roll:  smoothed[axisRoll] - float64(e.offset.Roll),
		Pitch: smoothed[axisPitch] - float64(e.offset.Pitch),
		Yaw:   smoothed[axisYaw],
		Turns: Turns{
			Roll:  e.unwrap[axisRoll].Turns(),
			Pitch: e.unwrap[axisPitch].Turns(),
			Yaw:   e.unwrap[axisYaw].Turns(),
		},
	}
	st.Heading = st.Yaw
	if e.useBearing && e.hasBearing {
		st.Heading = e.bearing
	}

	e.last = st
	return st, true
}

// Last returns the most recent state without consuming a sample.
func (e *Estimator) Last() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// SetBearing records the latest GPS bearing. ok=false clears it so the
// magnetometer heading is used again.
func (e *Estimator) SetBearing(bearing float64, ok bool) {
	e.mu.Lock()
	e.bearing = bearing
	e.hasBearing = ok
	e.mu.Unlock()
}

// SetUseBearing toggles the bearing preference at runtime.
func (e *Estimator) SetUseBearing(use bool) {
	e.mu.Lock()
	e.useBearing = use
	e.mu.Unlock()
}

// CaptureOffset stores the current smoothed roll and pitch, before any
// offset is applied, as the new level reference.
func (e *Estimator) CaptureOffset() (Offset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	off := Offset{
		Roll:  int(e.filter[axisRoll].Value()),
		Pitch: int(e.filter[axisPitch].Value()),
	}
	if err := e.persist(off); err != nil {
		return e.offset, err
	}
	return off, nil
}

// ResetOffset clears the level reference.
func (e *Estimator) ResetOffset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persist(Offset{})
}

// Offset returns the offset currently applied.
func (e *Estimator) Offset() Offset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offset
}

func (e *Estimator) persist(off Offset) error {
	if e.store != nil {
		if err := e.store.SetOffset(off); err != nil {
			return fmt.Errorf("store calibration offset: %w", err)
		}
	}
	e.offset = off
	return nil
}
