// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/relabs-tech/sphere_hud/internal/battery"
	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/gps"
	"github.com/relabs-tech/sphere_hud/internal/imu"
	"github.com/relabs-tech/sphere_hud/internal/orientation"
	"github.com/relabs-tech/sphere_hud/internal/sensors"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// sampleQueue is the depth of the channel MQTT callbacks push raw samples
// into; when the estimator falls behind newer samples are dropped.
const sampleQueue = 64

// openRawSource returns the local raw sample source selected by
// SENSOR_SOURCE together with a closer for any bus it opened.
func openRawSource(cfg *config.Config, logger *slog.Logger) (imu.RawSource, io.Closer, error) {
	switch cfg.SensorSource {
	case config.SourceMock:
		logger.Info("sensors: using mock raw source", "rotation", cfg.DisplayRotation)
		return orientation.NewMockSource(cfg.DisplayRotation), nopCloser{}, nil
	case config.SourceMPU9250:
		bus, err := sensors.OpenI2C(cfg.I2CBus)
		if err != nil {
			return nil, nil, err
		}
		dev, err := sensors.NewMPU9250(bus, sensors.Options{
			Name:     "mpu9250",
			MPUAddr:  cfg.IMUI2CAddr,
			MagAddr:  cfg.MagI2CAddr,
			Rotation: cfg.DisplayRotation,
		})
		if err != nil {
			bus.Close()
			return nil, nil, err
		}
		logger.Info("sensors: MPU9250 initialized", "bus", bus.String(), "addr", fmt.Sprintf("0x%02X", cfg.IMUI2CAddr))
		return dev, bus, nil
	}
	return nil, nil, fmt.Errorf("sensor source %q has no local device", cfg.SensorSource)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// pollRaw reads src on every tick and hands samples to fn. Read errors are
// logged and the loop keeps going.
func pollRaw(ctx context.Context, src imu.RawSource, interval time.Duration, fn func(imu.RawSample), logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s, err := src.NextRaw()
		if err != nil {
			logger.Warn("sensors: read error", "err", err)
			continue
		}
		fn(s)
	}
}

// subscribeRaw funnels raw samples published on topic into a channel
// drained by one goroutine, so fn is never called concurrently.
func subscribeRaw(ctx context.Context, b telemetry.Broker, topic string, fn func(imu.RawSample), logger *slog.Logger) error {
	samples := make(chan imu.RawSample, sampleQueue)
	err := b.Subscribe(topic, func(payload []byte) {
		var s imu.RawSample
		if err := json.Unmarshal(payload, &s); err != nil {
			logger.Warn("collector: raw sample unmarshal error", "topic", topic, "err", err)
			return
		}
		select {
		case samples <- s:
		default:
		}
	})
	if err != nil {
		return err
	}
	logger.Info("collector: subscribed", "topic", topic)

	go func() {
		defer b.Unsubscribe(topic)
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-samples:
				fn(s)
			}
		}
	}()
	return nil
}

// subscribeFix decodes fixes published on topic until ctx ends.
func subscribeFix(ctx context.Context, b telemetry.Broker, topic string, fn func(gps.Fix), logger *slog.Logger) error {
	err := b.Subscribe(topic, func(payload []byte) {
		var f gps.Fix
		if err := json.Unmarshal(payload, &f); err != nil {
			logger.Warn("collector: fix unmarshal error", "topic", topic, "err", err)
			return
		}
		fn(f)
	})
	if err != nil {
		return err
	}
	logger.Info("collector: subscribed", "topic", topic)

	go func() {
		<-ctx.Done()
		_ = b.Unsubscribe(topic)
	}()
	return nil
}

// scanSerialGPS reads fixes from the configured serial port until ctx ends.
func scanSerialGPS(ctx context.Context, cfg *config.Config, fn func(gps.Fix), logger *slog.Logger) error {
	port, err := gps.OpenSerial(cfg.GPSSerialPort, cfg.GPSBaudRate)
	if err != nil {
		return err
	}
	logger.Info("gps: serial port open", "port", cfg.GPSSerialPort, "baud", cfg.GPSBaudRate)

	// Closing the port unblocks a pending read on shutdown.
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	asm := gps.NewAssembler()
	if cfg.GPSUERE > 0 {
		asm.UERE = cfg.GPSUERE
	}
	return gps.Scan(ctx, port, asm, fn, func(err error) {
		logger.Debug("gps: skipped sentence", "err", err)
	})
}

// pollBarometer samples pressure altitude into the merger.
func pollBarometer(ctx context.Context, cfg *config.Config, m *telemetry.Merger, logger *slog.Logger) error {
	bus, err := sensors.OpenI2C(cfg.I2CBus)
	if err != nil {
		return err
	}
	baro, err := sensors.NewBarometer(bus, cfg.BaroI2CAddr, cfg.BaroSeaLevelPa)
	if err != nil {
		bus.Close()
		return err
	}
	logger.Info("sensors: barometer initialized", "addr", fmt.Sprintf("0x%02X", cfg.BaroI2CAddr))

	go func() {
		defer bus.Close()
		defer baro.Halt()

		ticker := time.NewTicker(cfg.BaroPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				alt, err := baro.Altitude()
				if err != nil {
					logger.Warn("sensors: barometer read error", "err", err)
					continue
				}
				m.ObservePressureAltitude(alt, t)
			}
		}
	}()
	return nil
}

// pollBattery reports the battery level when the sysfs node exists.
func pollBattery(ctx context.Context, cfg *config.Config, m *telemetry.Merger, logger *slog.Logger) {
	r := battery.Reader{Path: cfg.BatteryPath}
	if _, err := r.Read(); err != nil {
		logger.Info("battery: not available, gauge stays at zero", "path", cfg.BatteryPath, "err", err)
		return
	}
	go r.Poll(ctx, cfg.BatteryPollInterval, m.ObserveBattery, func(err error) {
		logger.Warn("battery: read error", "err", err)
	})
}
