// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"fmt"
	"time"
)

// Rotation is the display rotation hint reported alongside each sample.
// It is one of the four quarter turns; no other value is valid.
type Rotation int

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// ParseRotation accepts the rotation in degrees (0, 90, 180, 270).
func ParseRotation(deg int) (Rotation, error) {
	switch deg {
	case 0:
		return Rotation0, nil
	case 90:
		return Rotation90, nil
	case 180:
		return Rotation180, nil
	case 270:
		return Rotation270, nil
	}
	return Rotation0, fmt.Errorf("unsupported display rotation %d (want 0, 90, 180 or 270)", deg)
}

// Degrees returns the rotation as a clockwise angle.
func (r Rotation) Degrees() int {
	return int(r) * 90
}

func (r Rotation) String() string {
	return fmt.Sprintf("%d°", r.Degrees())
}

// RawSample is one accelerometer + magnetometer reading in the device frame.
// Accel is in m/s², Mag in µT.
type RawSample struct {
	Source   string     `json:"source"`
	Accel    [3]float64 `json:"accel"`
	Mag      [3]float64 `json:"mag"`
	Rotation Rotation   `json:"rotation"`
	Time     time.Time  `json:"time"`
}

// RawSource is anything that can produce raw samples on demand.
type RawSource interface {
	NextRaw() (RawSample, error)
}
