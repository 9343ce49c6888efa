// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/sphere_hud/internal/imu"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("# nothing set\n\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 50*time.Millisecond, cfg.RenderInterval)
	assert.Equal(t, 40*time.Millisecond, cfg.SnapshotTimeout)
	assert.Equal(t, 50.0, cfg.RadarRangeDivisor)
	assert.Equal(t, SourceMock, cfg.SensorSource)
}

func TestParseValues(t *testing.T) {
	in := `
MQTT_BROKER = tcp://localhost:1883
SENSOR_SOURCE=mqtt
GPS_SOURCE=serial
GPS_SERIAL_PORT=/dev/ttyAMA0
GPS_BAUD_RATE=38400
ALTITUDE_SOURCE=baro
IMU_I2C_ADDR=0x69
DISPLAY_ROTATION=270
MAGNETIC_DECLINATION=2.5
USE_BEARING=true
FLIP_VERTICAL=1
HIDE_GAUGES=false
RENDER_INTERVAL=100
TOPIC_SNAPSHOT_REPLY=x/reply
`
	cfg, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, SourceMQTT, cfg.SensorSource)
	assert.Equal(t, SourceSerial, cfg.GPSSource)
	assert.Equal(t, "/dev/ttyAMA0", cfg.GPSSerialPort)
	assert.Equal(t, 38400, cfg.GPSBaudRate)
	assert.Equal(t, SourceBaro, cfg.AltitudeSource)
	assert.Equal(t, uint16(0x69), cfg.IMUI2CAddr)
	assert.Equal(t, imu.Rotation270, cfg.DisplayRotation)
	assert.Equal(t, 2.5, cfg.MagneticDeclination)
	assert.True(t, cfg.UseBearing)
	assert.True(t, cfg.FlipVertical)
	assert.False(t, cfg.HideGauges)
	assert.Equal(t, 100*time.Millisecond, cfg.RenderInterval)
	assert.Equal(t, "x/reply", cfg.TopicSnapshotReply)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"unknown key", "NOPE=1", ErrUnknownKey},
		{"bad rotation", "DISPLAY_ROTATION=45", ErrInvalidValue},
		{"bad bool", "USE_BEARING=maybe", ErrInvalidValue},
		{"bad source", "SENSOR_SOURCE=spi", ErrInvalidValue},
		{"zero interval", "RENDER_INTERVAL=0", ErrInvalidValue},
		{"bad divisor", "RADAR_RANGE_DIVISOR=-1", ErrInvalidValue},
		{"bad addr", "IMU_I2C_ADDR=0x1FFFF", ErrInvalidValue},
		{"mqtt without broker", "SENSOR_SOURCE=mqtt", ErrRequired},
		{"serial without port", "GPS_SOURCE=serial", ErrRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseMalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("A=1\nno equals sign"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	_, err = Parse(strings.NewReader("CANVAS_WIDTH=10\nno equals sign"))
	assert.ErrorContains(t, err, "invalid config line 2")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hud_config.txt")
	require.NoError(t, os.WriteFile(path, []byte("CANVAS_WIDTH=480\nCANVAS_HEIGHT=320\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 480, cfg.CanvasWidth)
	assert.Equal(t, 320, cfg.CanvasHeight)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
