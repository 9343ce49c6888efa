// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/hud"
	"github.com/relabs-tech/sphere_hud/internal/raster"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// RunSnapshot asks the collector for one snapshot and writes the HUD as a
// PNG to outPath.
func RunSnapshot(ctx context.Context, cfg *config.Config, logger *slog.Logger, outPath string) error {
	logger = logger.With("component", "snapshot")

	broker, err := telemetry.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay+"-snapshot")
	if err != nil {
		return err
	}
	defer broker.Close()

	client := telemetry.NewClient(broker, cfg.TopicSnapshotRequest, cfg.TopicSnapshotReply, cfg.SnapshotTimeout)
	if err := client.Start(); err != nil {
		return fmt.Errorf("snapshot client: %w", err)
	}
	defer client.Stop()

	st, ok := client.Snapshot(ctx)
	if !ok {
		return fmt.Errorf("no snapshot from collector within %s", cfg.SnapshotTimeout)
	}

	data, err := renderPNG(st, cfg.CanvasWidth, cfg.CanvasHeight)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	logger.Info("snapshot: written", "path", outPath, "seq", st.Seq, "size", humanize.Bytes(uint64(len(data))))
	return nil
}

// renderPNG draws st as it looks once the start-up sweep is over.
func renderPNG(st telemetry.State, width, height int) ([]byte, error) {
	r := hud.NewRenderer(hud.Options{})
	for !r.SweepDone() {
		r.RenderFrame(st, width, height)
	}
	f := r.RenderFrame(st, width, height)

	rz, err := raster.New(raster.Options{})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := rz.EncodePNG(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
