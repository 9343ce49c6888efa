// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/gps"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// RunGPSProducer opens the GPS serial port, assembles NMEA sentences into
// fixes and publishes each one as JSON on TOPIC_GPS.
func RunGPSProducer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("component", "gps_producer")

	broker, err := telemetry.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer broker.Close()
	logger.Info("gps_producer: connected to MQTT broker", "broker", cfg.MQTTBroker)

	var published int
	return scanSerialGPS(ctx, cfg, func(f gps.Fix) {
		payload, err := json.Marshal(f)
		if err != nil {
			logger.Error("gps_producer: json marshal error", "err", err)
			return
		}
		// retained so a collector that starts later gets the last fix
		if err := broker.Publish(cfg.TopicGPS, payload, true); err != nil {
			logger.Warn("gps_producer: publish error", "err", err)
			return
		}
		published++
		if published == 1 || published%60 == 0 {
			logger.Info("gps_producer: published fix", "count", published, "available", f.Available, "sats", f.SatsUsed)
		}
	}, logger)
}
