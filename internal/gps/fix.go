// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "time"

const (
	knotsToKMH = 1.852
	knotsToMS  = 1852.0 / 3600.0
)

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time       time.Time `json:"time"`
	Latitude   float64   `json:"lat"`         // decimal degrees
	Longitude  float64   `json:"lon"`         // decimal degrees
	Altitude   float64   `json:"alt_m"`       // above mean sea level
	SpeedKnots float64   `json:"speed_knots"` // speed over ground
	CourseDeg  float64   `json:"course_deg"`  // course over ground, true
	HasCourse  bool      `json:"has_course"`
	Accuracy   float64   `json:"accuracy_m"`    // horizontal, estimated
	Variation  float64   `json:"variation_deg"` // magnetic variation, east positive
	Available  bool      `json:"available"`
	SatsUsed   int       `json:"sats_used"`
	SatsInView int       `json:"sats_in_view"`
}

// SpeedKMH is the ground speed in km/h.
func (f Fix) SpeedKMH() float64 {
	return f.SpeedKnots * knotsToKMH
}

// SpeedMS is the ground speed in m/s.
func (f Fix) SpeedMS() float64 {
	return f.SpeedKnots * knotsToMS
}
