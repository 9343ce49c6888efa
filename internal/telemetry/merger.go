// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"sync"
	"time"

	"github.com/relabs-tech/sphere_hud/internal/gps"
	"github.com/relabs-tech/sphere_hud/internal/orientation"
	"github.com/relabs-tech/sphere_hud/internal/track"
)

// Merger is the one writer of telemetry. Producers report into it from
// their own goroutines; every change is published as a fresh snapshot.
type Merger struct {
	mu    sync.Mutex
	st    State
	track *track.Buffer
	out   *Latest[State]
	now   func() time.Time

	lastFix     time.Time
	haveLastFix bool

	// once a barometer reports, it owns altitude and its rate
	baro     bool
	lastBaro time.Time
}

// NewMerger publishes snapshots into out. rangeDivisor configures the
// radar range selection (zero for the default).
func NewMerger(out *Latest[State], rangeDivisor float64) *Merger {
	m := &Merger{
		track: track.NewBuffer(rangeDivisor),
		out:   out,
		now:   time.Now,
	}
	m.publishLocked()
	return m
}

// ObserveOrientation records an estimator output.
func (m *Merger) ObserveOrientation(o orientation.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Roll, m.st.Pitch, m.st.Yaw, m.st.Heading = o.Roll, o.Pitch, o.Yaw, o.Heading
	m.publishLocked()
}

// ObserveFix records a positioning fix: speed and altitude with their
// per-second rates, accuracy, satellites and the radar track.
func (m *Merger) ObserveFix(f gps.Fix) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.st.LocationAvailable = f.Available
	m.st.SatsUsed = f.SatsUsed
	m.st.SatsTotal = f.SatsInView

	if m.track.Observe(f) {
		m.st.Range, m.st.Track = m.track.RangeAndHistory()
	}

	if f.Available {
		speed := f.SpeedKMH()
		if m.haveLastFix {
			dt := elapsedMillis(m.lastFix, f.Time)
			m.st.SpeedRate = RatePerSecond(m.st.Speed, speed, dt)
			if !m.baro {
				m.st.AltitudeRate = RatePerSecond(m.st.Altitude, f.Altitude, dt)
			}
		}
		m.st.Speed = speed
		if !m.baro {
			m.st.Altitude = f.Altitude
		}
		m.st.Accuracy = f.Accuracy
		m.lastFix = f.Time
		m.haveLastFix = true
	}

	m.publishLocked()
}

// ObservePressureAltitude records a barometric altitude in meters taken
// at the given time. From the first call on, fixes no longer update
// altitude.
func (m *Merger) ObservePressureAltitude(alt float64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.baro {
		m.st.AltitudeRate = RatePerSecond(m.st.Altitude, alt, elapsedMillis(m.lastBaro, at))
	} else {
		m.st.AltitudeRate = 0
	}
	m.st.Altitude = alt
	m.lastBaro = at
	m.baro = true
	m.publishLocked()
}

// ObserveBattery records the battery level in percent.
func (m *Merger) ObserveBattery(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Battery = percent
	m.publishLocked()
}

// SetFlags records the display preferences carried with every snapshot.
func (m *Merger) SetFlags(flipVertical, hideGauges bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.FlipVertical = flipVertical
	m.st.HideGauges = hideGauges
	m.publishLocked()
}

// Snapshot returns the current telemetry.
func (m *Merger) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

func (m *Merger) publishLocked() {
	m.st.Seq++
	m.st.Time = m.now()
	m.out.Store(m.st)
}

// RatePerSecond converts a change over dtMillis into a per second rate.
// A zero interval counts as one millisecond.
func RatePerSecond(prev, next float64, dtMillis int64) float64 {
	if dtMillis <= 0 {
		dtMillis = 1
	}
	return (next - prev) * 1000 / float64(dtMillis)
}

func elapsedMillis(from, to time.Time) int64 {
	return to.Sub(from).Milliseconds()
}
