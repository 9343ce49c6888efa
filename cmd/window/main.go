// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Command window shows the HUD in a desktop window fed by collector
// snapshots. It is the only program that links the GUI stack.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/hud"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
	"github.com/relabs-tech/sphere_hud/internal/window"
)

func main() {
	configPath := flag.String("config", "./hud_config.txt", "path to configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	var logLevel slog.LevelVar
	if *debug {
		logLevel.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))
	logger.Info("starting sphere-hud desktop window")

	if err := config.InitGlobal(*configPath); err != nil {
		logger.Error("failed to load config", "path", *configPath, "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, config.Get(), logger.With("component", "window")); err != nil {
		logger.Error("fatal", "err", err)

		cancel()
		os.Exit(1)
	}
}

// run returns when the window is closed or ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	broker, err := telemetry.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay+"-window")
	if err != nil {
		return err
	}
	defer broker.Close()

	client := telemetry.NewClient(broker, cfg.TopicSnapshotRequest, cfg.TopicSnapshotReply, cfg.SnapshotTimeout)
	if err := client.Start(); err != nil {
		return fmt.Errorf("snapshot client: %w", err)
	}
	defer client.Stop()

	game, err := window.NewGame(ctx, client, hud.NewRenderer(hud.Options{}), logger)
	if err != nil {
		return err
	}
	logger.Info("window: opening", "width", cfg.CanvasWidth, "height", cfg.CanvasHeight)
	return window.Run(window.Config{
		Width:      cfg.CanvasWidth,
		Height:     cfg.CanvasHeight,
		Fullscreen: cfg.WindowFullscreen,
		Title:      "Sphere HUD",
		TPS:        int(1000 / max(cfg.RenderInterval.Milliseconds(), 1)),
	}, game)
}
