// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/sphere_hud/internal/imu"
)

// Sentinel errors wrapped by Load.
var (
	ErrRequired     = errors.New("required key missing")
	ErrInvalidValue = errors.New("invalid value")
	ErrUnknownKey   = errors.New("unknown config key")
)

// Sensor sources.
const (
	SourceMPU9250 = "mpu9250"
	SourceMock    = "mock"
	SourceMQTT    = "mqtt"
	SourceSerial  = "serial"
	SourceNone    = "none"
	SourceGPS     = "gps"
	SourceBaro    = "baro"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string
	MQTTClientIDCollector string
	MQTTClientIDProducer  string
	MQTTClientIDGPS       string
	MQTTClientIDDisplay   string
	MQTTClientIDConsole   string

	// Topics
	TopicIMURaw          string
	TopicGPS             string
	TopicSnapshotRequest string
	TopicSnapshotReply   string // prefix, a per-client id is appended
	TopicSnapshot        string // periodic broadcast
	TopicCalibration     string

	// Inputs: SENSOR_SOURCE is mpu9250, mock or mqtt; GPS_SOURCE is
	// serial, mqtt or none; ALTITUDE_SOURCE is gps or baro.
	SensorSource   string
	GPSSource      string
	AltitudeSource string

	// I2C hardware
	I2CBus         string
	IMUI2CAddr     uint16
	MagI2CAddr     uint16
	BaroI2CAddr    uint16
	BaroSeaLevelPa float64

	// Orientation
	DisplayRotation     imu.Rotation
	MagneticDeclination float64 // degrees east
	UseBearing          bool

	// GPS
	GPSSerialPort string
	GPSBaudRate   int
	GPSUERE       float64 // meters per unit of HDOP

	// HUD
	FlipVertical      bool
	HideGauges        bool
	RadarRangeDivisor float64
	CanvasWidth       int
	CanvasHeight      int

	// Timing
	IMUSampleInterval   time.Duration
	RenderInterval      time.Duration
	SnapshotTimeout     time.Duration
	BroadcastInterval   time.Duration
	BatteryPollInterval time.Duration
	BaroPollInterval    time.Duration

	// Files
	BatteryPath string
	PrefsPath   string

	// Outputs
	WebServerPort    int
	OLEDEnabled      bool
	WindowFullscreen bool
}

// Default returns the configuration used for every key the file omits.
func Default() *Config {
	return &Config{
		MQTTClientIDCollector: "sphere-hud-collector",
		MQTTClientIDProducer:  "sphere-hud-imu-producer",
		MQTTClientIDGPS:       "sphere-hud-gps-producer",
		MQTTClientIDDisplay:   "sphere-hud-display",
		MQTTClientIDConsole:   "sphere-hud-console",

		TopicIMURaw:          "hud/imu/raw",
		TopicGPS:             "hud/gps",
		TopicSnapshotRequest: "hud/snapshot/request",
		TopicSnapshotReply:   "hud/snapshot/reply",
		TopicSnapshot:        "hud/snapshot",
		TopicCalibration:     "hud/calibration",

		SensorSource:   SourceMock,
		GPSSource:      SourceNone,
		AltitudeSource: SourceGPS,

		IMUI2CAddr:     0x68,
		MagI2CAddr:     0x0C,
		BaroI2CAddr:    0x76,
		BaroSeaLevelPa: 101325,

		GPSBaudRate: 9600,
		GPSUERE:     5,

		RadarRangeDivisor: 50,
		CanvasWidth:       960,
		CanvasHeight:      640,

		IMUSampleInterval:   20 * time.Millisecond,
		RenderInterval:      50 * time.Millisecond,
		SnapshotTimeout:     40 * time.Millisecond,
		BroadcastInterval:   time.Second,
		BatteryPollInterval: 30 * time.Second,
		BaroPollInterval:    200 * time.Millisecond,

		BatteryPath: "/sys/class/power_supply/BAT0/capacity",

		WebServerPort: 8080,
	}
}

// Package-level singleton guarded by configOnce and configMu. External code
// uses InitGlobal to set it and Get to read it.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default. Blank lines and lines
// starting with '#' are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_COLLECTOR":
		c.MQTTClientIDCollector = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_IMU_RAW":
		c.TopicIMURaw = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_SNAPSHOT_REQUEST":
		c.TopicSnapshotRequest = value
	case "TOPIC_SNAPSHOT_REPLY":
		c.TopicSnapshotReply = value
	case "TOPIC_SNAPSHOT":
		c.TopicSnapshot = value
	case "TOPIC_CALIBRATION":
		c.TopicCalibration = value

	// Inputs
	case "SENSOR_SOURCE":
		c.SensorSource, err = oneOf(key, value, SourceMPU9250, SourceMock, SourceMQTT)
	case "GPS_SOURCE":
		c.GPSSource, err = oneOf(key, value, SourceSerial, SourceMQTT, SourceNone)
	case "ALTITUDE_SOURCE":
		c.AltitudeSource, err = oneOf(key, value, SourceGPS, SourceBaro)

	// I2C
	case "I2C_BUS":
		c.I2CBus = value
	case "IMU_I2C_ADDR":
		c.IMUI2CAddr, err = parseAddr(key, value)
	case "MAG_I2C_ADDR":
		c.MagI2CAddr, err = parseAddr(key, value)
	case "BARO_I2C_ADDR":
		c.BaroI2CAddr, err = parseAddr(key, value)
	case "BARO_SEA_LEVEL_PA":
		c.BaroSeaLevelPa, err = parseFloat(key, value)
		if err == nil && c.BaroSeaLevelPa <= 0 {
			err = fmt.Errorf("%w: BARO_SEA_LEVEL_PA must be positive, got %v", ErrInvalidValue, c.BaroSeaLevelPa)
		}

	// Orientation
	case "DISPLAY_ROTATION":
		deg, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("%w: DISPLAY_ROTATION %q: %v", ErrInvalidValue, value, perr)
		}
		rot, rerr := imu.ParseRotation(deg)
		if rerr != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, rerr)
		}
		c.DisplayRotation = rot
	case "MAGNETIC_DECLINATION":
		c.MagneticDeclination, err = parseFloat(key, value)
	case "USE_BEARING":
		c.UseBearing, err = parseBool(key, value)

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parsePositive(key, value)
	case "GPS_UERE_METERS":
		c.GPSUERE, err = parseFloat(key, value)

	// HUD
	case "FLIP_VERTICAL":
		c.FlipVertical, err = parseBool(key, value)
	case "HIDE_GAUGES":
		c.HideGauges, err = parseBool(key, value)
	case "RADAR_RANGE_DIVISOR":
		c.RadarRangeDivisor, err = parseFloat(key, value)
		if err == nil && c.RadarRangeDivisor <= 0 {
			err = fmt.Errorf("%w: RADAR_RANGE_DIVISOR must be positive, got %v", ErrInvalidValue, c.RadarRangeDivisor)
		}
	case "CANVAS_WIDTH":
		c.CanvasWidth, err = parsePositive(key, value)
	case "CANVAS_HEIGHT":
		c.CanvasHeight, err = parsePositive(key, value)

	// Timing, all in milliseconds
	case "IMU_SAMPLE_INTERVAL":
		c.IMUSampleInterval, err = parseMillis(key, value)
	case "RENDER_INTERVAL":
		c.RenderInterval, err = parseMillis(key, value)
	case "SNAPSHOT_TIMEOUT":
		c.SnapshotTimeout, err = parseMillis(key, value)
	case "BROADCAST_INTERVAL":
		c.BroadcastInterval, err = parseMillis(key, value)
	case "BATTERY_POLL_INTERVAL":
		c.BatteryPollInterval, err = parseMillis(key, value)
	case "BARO_POLL_INTERVAL":
		c.BaroPollInterval, err = parseMillis(key, value)

	// Files
	case "BATTERY_PATH":
		c.BatteryPath = value
	case "PREFS_PATH":
		c.PrefsPath = value

	// Outputs
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parsePositive(key, value)
	case "OLED_ENABLED":
		c.OLEDEnabled, err = parseBool(key, value)
	case "WINDOW_FULLSCREEN":
		c.WindowFullscreen, err = parseBool(key, value)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return err
}

// validate checks cross-key requirements.
func (c *Config) validate() error {
	needsMQTT := c.SensorSource == SourceMQTT || c.GPSSource == SourceMQTT
	if needsMQTT && c.MQTTBroker == "" {
		return fmt.Errorf("%w: MQTT_BROKER is required for mqtt sources", ErrRequired)
	}
	if c.GPSSource == SourceSerial && c.GPSSerialPort == "" {
		return fmt.Errorf("%w: GPS_SERIAL_PORT is required when GPS_SOURCE=serial", ErrRequired)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) (string, error) {
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidValue, key, strings.Join(allowed, ", "), value)
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, key, value, err)
	}
	return uint16(addr), nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, key, value, err)
	}
	return f, nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, key, value, err)
	}
	return b, nil
}

func parsePositive(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, key, value, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidValue, key, n)
	}
	return n, nil
}

func parseMillis(key, value string) (time.Duration, error) {
	n, err := parsePositive(key, value)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
