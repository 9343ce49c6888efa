// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/relabs-tech/sphere_hud/internal/imu"
	"periph.io/x/conn/v3/i2c"
)

const (
	DefaultMPUAddr uint16 = 0x68
	DefaultMagAddr uint16 = 0x0C

	standardGravity = 9.80665
	accelLSBPerG    = 16384.0 // ±2 g full scale
	magMicroTesla   = 0.15    // µT per LSB at 16 bit output
)

// Options selects the devices on the bus and the rotation hint attached to
// every sample.
type Options struct {
	Name     string
	MPUAddr  uint16
	MagAddr  uint16
	Rotation imu.Rotation
}

// MPU9250 reads the accelerometer of an MPU-9250 and its AK8963
// magnetometer over I²C. It implements imu.RawSource.
type MPU9250 struct {
	name     string
	rotation imu.Rotation
	accel    i2c.Dev
	mag      i2c.Dev
	adjust   [3]float64
	lastMag  [3]float64
	haveMag  bool

	now   func() time.Time
	sleep func(time.Duration)
}

// NewMPU9250 wakes the MPU-9250, enables its I²C bypass so the AK8963 is
// reachable on the same bus, reads the magnetometer fuse ROM and puts it in
// continuous mode.
func NewMPU9250(bus i2c.Bus, opts Options) (*MPU9250, error) {
	return newMPU9250(bus, opts, time.Sleep)
}

func newMPU9250(bus i2c.Bus, opts Options, sleep func(time.Duration)) (*MPU9250, error) {
	if opts.MPUAddr == 0 {
		opts.MPUAddr = DefaultMPUAddr
	}
	if opts.MagAddr == 0 {
		opts.MagAddr = DefaultMagAddr
	}
	if opts.Name == "" {
		opts.Name = "mpu9250"
	}
	d := &MPU9250{
		name:     opts.Name,
		rotation: opts.Rotation,
		accel:    i2c.Dev{Bus: bus, Addr: opts.MPUAddr},
		mag:      i2c.Dev{Bus: bus, Addr: opts.MagAddr},
		now:      time.Now,
		sleep:    sleep,
	}
	if err := d.initAccel(); err != nil {
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}
	if err := d.initMag(); err != nil {
		return nil, fmt.Errorf("%s: magnetometer: %w", d.name, err)
	}
	return d, nil
}

func (d *MPU9250) initAccel() error {
	id, err := readReg(d.accel, registerNames, regWhoAmI)
	if err != nil {
		return err
	}
	if id != whoAmIMPU9250 && id != whoAmIMPU9255 {
		return fmt.Errorf("unexpected WHO_AM_I 0x%02X", id)
	}
	if err := writeReg(d.accel, registerNames, regPwrMgmt1, pwrReset); err != nil {
		return err
	}
	d.sleep(100 * time.Millisecond)

	steps := []struct{ reg, val byte }{
		{regPwrMgmt1, pwrClockAuto},
		{regConfig, 0x03},       // 41 Hz DLPF
		{regSmplrtDiv, 0x04},    // 200 Hz
		{regAccelConfig, 0x00},  // ±2 g
		{regAccelConfig2, 0x03}, // 41 Hz accel DLPF
		{regUserCtrl, 0x00},     // internal I²C master off
		{regIntPinCfg, intBypassEn},
	}
	for _, s := range steps {
		if err := writeReg(d.accel, registerNames, s.reg, s.val); err != nil {
			return err
		}
	}
	d.sleep(10 * time.Millisecond)
	return nil
}

func (d *MPU9250) initMag() error {
	id, err := readReg(d.mag, magRegisterNames, akWIA)
	if err != nil {
		return err
	}
	if id != wiaAK8963 {
		return fmt.Errorf("unexpected WIA 0x%02X", id)
	}
	if err := writeReg(d.mag, magRegisterNames, akCNTL1, akPowerDown); err != nil {
		return err
	}
	d.sleep(10 * time.Millisecond)
	if err := writeReg(d.mag, magRegisterNames, akCNTL1, akFuseROM); err != nil {
		return err
	}
	d.sleep(10 * time.Millisecond)

	asa := make([]byte, 3)
	if err := d.mag.Tx([]byte{akASAX}, asa); err != nil {
		return fmt.Errorf("read %s: %w", regName(magRegisterNames, akASAX), err)
	}
	d.adjust = sensitivityAdjust(asa)

	if err := writeReg(d.mag, magRegisterNames, akCNTL1, akPowerDown); err != nil {
		return err
	}
	d.sleep(10 * time.Millisecond)
	if err := writeReg(d.mag, magRegisterNames, akCNTL1, akContinuous2); err != nil {
		return err
	}
	d.sleep(10 * time.Millisecond)
	return nil
}

// NextRaw reads one accelerometer sample and the newest magnetometer
// reading. When the AK8963 has no fresh data, or reports an overflow, the
// previous magnetometer value is repeated.
func (d *MPU9250) NextRaw() (imu.RawSample, error) {
	buf := make([]byte, 6)
	if err := d.accel.Tx([]byte{regAccelXOutH}, buf); err != nil {
		return imu.RawSample{}, fmt.Errorf("%s: read %s: %w", d.name, regName(registerNames, regAccelXOutH), err)
	}
	accel := decodeAccel(buf)

	if err := d.pollMag(); err != nil {
		return imu.RawSample{}, fmt.Errorf("%s: %w", d.name, err)
	}
	if !d.haveMag {
		return imu.RawSample{}, fmt.Errorf("%s: no magnetometer data yet", d.name)
	}

	return imu.RawSample{
		Source:   d.name,
		Accel:    accel,
		Mag:      d.lastMag,
		Rotation: d.rotation,
		Time:     d.now(),
	}, nil
}

func (d *MPU9250) pollMag() error {
	st1, err := readReg(d.mag, magRegisterNames, akST1)
	if err != nil {
		return err
	}
	if st1&st1DataReady == 0 {
		return nil
	}
	// HXL..HZH followed by ST2
	buf := make([]byte, 7)
	if err := d.mag.Tx([]byte{akHXL}, buf); err != nil {
		return fmt.Errorf("read %s: %w", regName(magRegisterNames, akHXL), err)
	}
	if buf[6]&st2Overflow != 0 {
		return nil
	}
	d.lastMag = decodeMag(buf[:6], d.adjust)
	d.haveMag = true
	return nil
}

// decodeAccel converts big endian accelerometer counts into m/s².
func decodeAccel(b []byte) [3]float64 {
	var out [3]float64
	for i := range out {
		raw := int16(binary.BigEndian.Uint16(b[2*i:]))
		out[i] = float64(raw) / accelLSBPerG * standardGravity
	}
	return out
}

// decodeMag converts little endian AK8963 counts into µT expressed in the
// accelerometer frame: the magnetometer X and Y axes are swapped relative to
// the accelerometer and its Z points the other way.
func decodeMag(b []byte, adjust [3]float64) [3]float64 {
	var m [3]float64
	for i := range m {
		raw := int16(binary.LittleEndian.Uint16(b[2*i:]))
		m[i] = float64(raw) * adjust[i] * magMicroTesla
	}
	return [3]float64{m[1], m[0], -m[2]}
}

// sensitivityAdjust applies the AK8963 datasheet formula
// Hadj = H * ((ASA-128)*0.5/128 + 1).
func sensitivityAdjust(asa []byte) [3]float64 {
	var out [3]float64
	for i := range out {
		out[i] = (float64(asa[i])-128)*0.5/128 + 1
	}
	return out
}

func readReg(d i2c.Dev, names map[byte]string, reg byte) (byte, error) {
	r := []byte{0}
	if err := d.Tx([]byte{reg}, r); err != nil {
		return 0, fmt.Errorf("read %s: %w", regName(names, reg), err)
	}
	return r[0], nil
}

func writeReg(d i2c.Dev, names map[byte]string, reg, val byte) error {
	if err := d.Tx([]byte{reg, val}, nil); err != nil {
		return fmt.Errorf("write %s=0x%02X: %w", regName(names, reg), val, err)
	}
	return nil
}
