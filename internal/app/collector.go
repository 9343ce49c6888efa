// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/prefs"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// RunCollector runs the estimator, merger and track buffer, and serves
// telemetry snapshots over MQTT until ctx is cancelled.
func RunCollector(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("component", "collector")

	broker, err := telemetry.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDCollector)
	if err != nil {
		return err
	}
	defer broker.Close()
	logger.Info("collector: connected to MQTT broker", "broker", cfg.MQTTBroker)

	p, err := newPipelineFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	if err := startCollector(ctx, cfg, broker, p, logger); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("collector: shutting down")
	return nil
}

func newPipelineFromConfig(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	store, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return nil, err
	}
	return NewPipeline(cfg, store, logger), nil
}

// startCollector starts every input selected in cfg plus the snapshot
// server, calibration listener and broadcast loop. All of them stop with
// ctx.
func startCollector(ctx context.Context, cfg *config.Config, broker telemetry.Broker, p *Pipeline, logger *slog.Logger) error {
	// orientation input
	switch cfg.SensorSource {
	case config.SourceMQTT:
		if err := subscribeRaw(ctx, broker, cfg.TopicIMURaw, p.HandleSample, logger); err != nil {
			return err
		}
	default:
		src, closer, err := openRawSource(cfg, logger)
		if err != nil {
			return err
		}
		go func() {
			defer closer.Close()
			pollRaw(ctx, src, cfg.IMUSampleInterval, p.HandleSample, logger)
		}()
	}

	// position input
	switch cfg.GPSSource {
	case config.SourceMQTT:
		if err := subscribeFix(ctx, broker, cfg.TopicGPS, p.HandleFix, logger); err != nil {
			return err
		}
	case config.SourceSerial:
		go func() {
			if err := scanSerialGPS(ctx, cfg, p.HandleFix, logger); err != nil {
				logger.Error("gps: scan stopped", "err", err)
			}
		}()
	default:
		logger.Info("collector: no position source, radar stays empty")
	}

	if cfg.AltitudeSource == config.SourceBaro {
		if err := pollBarometer(ctx, cfg, p.Merger(), logger); err != nil {
			return err
		}
	}
	pollBattery(ctx, cfg, p.Merger(), logger)

	if err := broker.Subscribe(cfg.TopicCalibration, func(payload []byte) {
		cmd, err := telemetry.ParseCommand(payload)
		if err != nil {
			logger.Warn("collector: bad calibration command", "err", err)
			return
		}
		if err := p.HandleCommand(cmd); err != nil {
			logger.Error("collector: calibration failed", "action", cmd.Action, "err", err)
		}
	}); err != nil {
		return err
	}

	server := telemetry.NewServer(broker, cfg.TopicSnapshotRequest, p.Latest(), logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("snapshot server: %w", err)
	}
	logger.Info("collector: serving snapshots", "topic", cfg.TopicSnapshotRequest)

	go func() {
		<-ctx.Done()
		_ = server.Stop()
		_ = broker.Unsubscribe(cfg.TopicCalibration)
	}()

	go broadcast(ctx, broker, cfg.TopicSnapshot, cfg.BroadcastInterval, p.Latest(), logger)
	return nil
}

// broadcast publishes the latest state as a retained message so consoles
// joining late see the current value straight away.
func broadcast(ctx context.Context, b telemetry.Broker, topic string, interval time.Duration, src *telemetry.Latest[telemetry.State], logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		st, ok := src.Load()
		if !ok || st.Seq == lastSeq {
			continue
		}
		lastSeq = st.Seq

		payload, err := json.Marshal(st)
		if err != nil {
			logger.Error("collector: snapshot marshal error", "err", err)
			continue
		}
		if err := b.Publish(topic, payload, true); err != nil {
			logger.Warn("collector: broadcast publish error", "err", err)
		}
	}
}
