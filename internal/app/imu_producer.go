// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/imu"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// RunIMUProducer reads the local sensor (MPU9250 or mock) and publishes raw
// samples as JSON on TOPIC_IMU_RAW.
func RunIMUProducer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("component", "imu_producer")

	if cfg.SensorSource == config.SourceMQTT {
		// the producer is the device end; mqtt here would loop back on itself
		local := *cfg
		local.SensorSource = config.SourceMPU9250
		cfg = &local
	}
	src, closer, err := openRawSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	broker, err := telemetry.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer broker.Close()
	logger.Info("imu_producer: connected to MQTT, starting publish loop", "topic", cfg.TopicIMURaw, "interval", cfg.IMUSampleInterval)

	pollRaw(ctx, src, cfg.IMUSampleInterval, func(s imu.RawSample) {
		publishRaw(broker, cfg.TopicIMURaw, s, logger)
	}, logger)
	return nil
}

func publishRaw(b telemetry.Broker, topic string, s imu.RawSample, logger *slog.Logger) {
	payload, err := json.Marshal(s)
	if err != nil {
		logger.Error("imu_producer: json marshal error", "err", err)
		return
	}
	if err := b.Publish(topic, payload, false); err != nil {
		logger.Warn("imu_producer: publish error", "err", err)
	}
}
