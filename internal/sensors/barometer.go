// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

const (
	DefaultBaroAddr uint16 = 0x76

	// StandardSeaLevel is the ISA sea level pressure in Pa.
	StandardSeaLevel = 101325.0
)

// Barometer turns a BMP280/BME280 pressure reading into altitude.
type Barometer struct {
	dev      *bmxx80.Dev
	seaLevel float64
}

// NewBarometer opens a bmxx80 on the bus. seaLevelPa is the QNH reference;
// zero selects StandardSeaLevel.
func NewBarometer(bus i2c.Bus, addr uint16, seaLevelPa float64) (*Barometer, error) {
	if addr == 0 {
		addr = DefaultBaroAddr
	}
	if seaLevelPa <= 0 {
		seaLevelPa = StandardSeaLevel
	}
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("barometer init at 0x%02X: %w", addr, err)
	}
	return &Barometer{dev: dev, seaLevel: seaLevelPa}, nil
}

// Altitude reads the sensor and returns the pressure altitude in meters.
func (b *Barometer) Altitude() (float64, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return 0, fmt.Errorf("barometer sense: %w", err)
	}
	return PressureAltitude(float64(e.Pressure)/float64(physic.Pascal), b.seaLevel), nil
}

func (b *Barometer) Halt() error {
	return b.dev.Halt()
}

// PressureAltitude uses the international barometric formula
// h = 44330 * (1 - (p/p0)^(1/5.255)).
func PressureAltitude(pa, seaLevelPa float64) float64 {
	if pa <= 0 || seaLevelPa <= 0 {
		return 0
	}
	return 44330 * (1 - math.Pow(pa/seaLevelPa, 1/5.255))
}
