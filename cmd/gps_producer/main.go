// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/sphere_hud/internal/app"
	"github.com/relabs-tech/sphere_hud/internal/config"
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
	logger.Info("starting sphere-hud GPS producer (NMEA → MQTT)")

	if err := config.InitGlobal(*configPath); err != nil {
		logger.Error("failed to load config", "path", *configPath, "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunGPSProducer(ctx, config.Get(), logger); err != nil {
		logger.Error("fatal", "err", err)

		cancel()
		os.Exit(1)
	}
}
