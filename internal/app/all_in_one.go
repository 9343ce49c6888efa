// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log/slog"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// RunAllInOne runs the collector and the display in one process. They are
// joined by an in-memory broker unless an input is read from MQTT, in which
// case everything goes through MQTT_BROKER.
func RunAllInOne(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("component", "hud")

	broker, closeBroker, err := allInOneBroker(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBroker()

	p, err := newPipelineFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	if err := startCollector(ctx, cfg, broker, p, logger); err != nil {
		return err
	}
	return serveDisplay(ctx, cfg, broker, logger)
}

func allInOneBroker(cfg *config.Config, logger *slog.Logger) (telemetry.Broker, func(), error) {
	if cfg.SensorSource != config.SourceMQTT && cfg.GPSSource != config.SourceMQTT {
		logger.Info("hud: using in-process broker")
		return telemetry.NewLoopbackBroker(), func() {}, nil
	}
	b, err := telemetry.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDCollector)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("hud: connected to MQTT broker", "broker", cfg.MQTTBroker)
	return b, b.Close, nil
}
