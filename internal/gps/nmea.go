// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"fmt"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

// DefaultUERE is the user equivalent range error (meters) used to turn HDOP
// into an accuracy radius.
const DefaultUERE = 5.0

// minCourseKnots is the speed below which the reported course is noise.
const minCourseKnots = 1.0

// Assembler combines the NMEA sentences of one reporting cycle into fixes.
// GGA, GSA and GSV update the pending state; every RMC emits a Fix.
type Assembler struct {
	UERE float64

	altitude float64
	hdop     float64
	haveHDOP bool
	used     int
	inView   map[string]int // per talker
	now      func() time.Time
}

// NewAssembler returns an assembler with the default UERE.
func NewAssembler() *Assembler {
	return &Assembler{
		UERE:   DefaultUERE,
		inView: make(map[string]int),
		now:    time.Now,
	}
}

// Feed parses one NMEA line. It returns a fix and true when the line
// completes one (an RMC sentence). Lines that are not NMEA sentences are
// ignored without error.
func (a *Assembler) Feed(line string) (Fix, bool, error) {
	line = strings.TrimSpace(line)

	// NMEA sentences usually start with '$'
	if line == "" || !strings.HasPrefix(line, "$") {
		return Fix{}, false, nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Fix{}, false, fmt.Errorf("parse nmea: %w", err)
	}

	switch sentence.DataType() {
	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		a.altitude = m.Altitude
		a.used = int(m.NumSatellites)
		if m.HDOP > 0 {
			a.hdop = m.HDOP
			a.haveHDOP = true
		}

	case nmea.TypeGSA:
		m := sentence.(nmea.GSA)
		if m.HDOP > 0 {
			a.hdop = m.HDOP
			a.haveHDOP = true
		}
		if a.used == 0 {
			for _, sv := range m.SV {
				if sv != "" {
					a.used++
				}
			}
		}

	case nmea.TypeGSV:
		m := sentence.(nmea.GSV)
		a.inView[sentence.TalkerID()] = int(m.NumberSVsInView)

	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		return a.fromRMC(m), true, nil
	}

	return Fix{}, false, nil
}

func (a *Assembler) fromRMC(m nmea.RMC) Fix {
	f := Fix{
		Time:       a.fixTime(m.Date, m.Time),
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		Altitude:   a.altitude,
		SpeedKnots: m.Speed,
		CourseDeg:  m.Course,
		Variation:  m.Variation,
		Available:  m.Validity == nmea.ValidRMC,
		SatsUsed:   a.used,
	}
	f.HasCourse = f.Available && m.Speed >= minCourseKnots

	if a.haveHDOP {
		f.Accuracy = a.hdop * a.UERE
	}

	for _, n := range a.inView {
		f.SatsInView += n
	}
	if f.SatsInView < f.SatsUsed {
		f.SatsInView = f.SatsUsed
	}
	return f
}

func (a *Assembler) fixTime(d nmea.Date, t nmea.Time) time.Time {
	if !d.Valid || !t.Valid {
		return a.now().UTC()
	}
	year := 2000 + d.YY
	if d.YY >= 80 {
		year = 1900 + d.YY
	}
	return time.Date(year, time.Month(d.MM), d.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}
