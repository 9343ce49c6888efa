// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/sphere_hud/internal/imu"
)

// fakeBus is a register file per device address.
type fakeBus struct {
	regs   map[uint16]*[256]byte
	writes []string
	fail   error
}

func newFakeBus() *fakeBus {
	b := &fakeBus{regs: map[uint16]*[256]byte{
		DefaultMPUAddr: {},
		DefaultMagAddr: {},
	}}
	b.regs[DefaultMPUAddr][regWhoAmI] = whoAmIMPU9250
	b.regs[DefaultMagAddr][akWIA] = wiaAK8963
	b.regs[DefaultMagAddr][akASAX] = 128
	b.regs[DefaultMagAddr][akASAX+1] = 128
	b.regs[DefaultMagAddr][akASAX+2] = 128
	return b
}

func (b *fakeBus) String() string                  { return "fake" }
func (b *fakeBus) SetSpeed(physic.Frequency) error { return nil }

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.fail != nil {
		return b.fail
	}
	regs, ok := b.regs[addr]
	if !ok {
		return errors.New("no device")
	}
	if len(r) == 0 {
		regs[w[0]] = w[1]
		b.writes = append(b.writes, regName(registerNames, w[0]))
		return nil
	}
	for i := range r {
		r[i] = regs[int(w[0])+i]
	}
	return nil
}

func noSleep(time.Duration) {}

func TestNewMPU9250Init(t *testing.T) {
	bus := newFakeBus()
	d, err := newMPU9250(bus, Options{Rotation: imu.Rotation90}, noSleep)
	require.NoError(t, err)

	mpu := bus.regs[DefaultMPUAddr]
	assert.Equal(t, byte(intBypassEn), mpu[regIntPinCfg])
	assert.Equal(t, byte(pwrClockAuto), mpu[regPwrMgmt1])
	assert.Equal(t, byte(akContinuous2), bus.regs[DefaultMagAddr][akCNTL1])
	assert.Equal(t, [3]float64{1, 1, 1}, d.adjust)
}

func TestNewMPU9250WrongID(t *testing.T) {
	bus := newFakeBus()
	bus.regs[DefaultMPUAddr][regWhoAmI] = 0x12
	_, err := newMPU9250(bus, Options{}, noSleep)
	assert.ErrorContains(t, err, "WHO_AM_I")

	bus = newFakeBus()
	bus.regs[DefaultMagAddr][akWIA] = 0
	_, err = newMPU9250(bus, Options{}, noSleep)
	assert.ErrorContains(t, err, "magnetometer")
}

func TestMPU9250NextRaw(t *testing.T) {
	bus := newFakeBus()
	d, err := newMPU9250(bus, Options{Name: "left", Rotation: imu.Rotation90}, noSleep)
	require.NoError(t, err)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return at }

	_, err = d.NextRaw()
	assert.Error(t, err, "no magnetometer sample yet")

	mpu := bus.regs[DefaultMPUAddr]
	// Z = +1 g
	mpu[regAccelXOutH+4] = 0x40
	mpu[regAccelXOutH+5] = 0x00

	mag := bus.regs[DefaultMagAddr]
	mag[akST1] = st1DataReady
	// X = 100, Y = -200, Z = 300 counts
	mag[akHXL], mag[akHXL+1] = 100, 0
	mag[akHXL+2], mag[akHXL+3] = 0x38, 0xFF
	mag[akHXL+4], mag[akHXL+5] = 0x2C, 0x01

	s, err := d.NextRaw()
	require.NoError(t, err)
	assert.Equal(t, "left", s.Source)
	assert.Equal(t, imu.Rotation90, s.Rotation)
	assert.Equal(t, at, s.Time)
	assert.InDelta(t, standardGravity, s.Accel[2], 1e-9)
	assert.InDelta(t, -30, s.Mag[0], 1e-9)
	assert.InDelta(t, 15, s.Mag[1], 1e-9)
	assert.InDelta(t, -45, s.Mag[2], 1e-9)

	// overflow keeps the previous reading
	mag[akHXL] = 0
	mag[akST2] = st2Overflow
	s, err = d.NextRaw()
	require.NoError(t, err)
	assert.InDelta(t, 15, s.Mag[1], 1e-9)
}

func TestMPU9250BusError(t *testing.T) {
	bus := newFakeBus()
	d, err := newMPU9250(bus, Options{}, noSleep)
	require.NoError(t, err)

	bus.fail = errors.New("nack")
	_, err = d.NextRaw()
	assert.ErrorContains(t, err, "ACCEL_XOUT_H(0x3B)")
}

func TestSensitivityAdjust(t *testing.T) {
	adj := sensitivityAdjust([]byte{128, 0, 255})
	assert.InDelta(t, 1, adj[0], 1e-12)
	assert.InDelta(t, 0.5, adj[1], 1e-12)
	assert.InDelta(t, 1.49609375, adj[2], 1e-12)
}

func TestPressureAltitude(t *testing.T) {
	assert.InDelta(t, 0, PressureAltitude(StandardSeaLevel, StandardSeaLevel), 1e-9)
	assert.InDelta(t, 1000, PressureAltitude(89876, StandardSeaLevel), 5)
	assert.Zero(t, PressureAltitude(0, StandardSeaLevel))
}
