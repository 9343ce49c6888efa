// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/hud"
	"github.com/relabs-tech/sphere_hud/internal/raster"
	"github.com/relabs-tech/sphere_hud/internal/sensors"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// oledEvery is how many render ticks pass between OLED refreshes; the
// panel cannot take 20 full frames a second over I²C.
const oledEvery = 4

// RunDisplay renders the HUD from collector snapshots and serves it over
// HTTP, optionally mirroring it on an SSD1306.
func RunDisplay(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("component", "display")

	broker, err := telemetry.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer broker.Close()
	logger.Info("display: connected to MQTT broker", "broker", cfg.MQTTBroker)

	return serveDisplay(ctx, cfg, broker, logger)
}

// serveDisplay requests snapshots over b and runs the render loop and web
// server until ctx is cancelled.
func serveDisplay(ctx context.Context, cfg *config.Config, b telemetry.Broker, logger *slog.Logger) error {
	client := telemetry.NewClient(b, cfg.TopicSnapshotRequest, cfg.TopicSnapshotReply, cfg.SnapshotTimeout)
	if err := client.Start(); err != nil {
		return fmt.Errorf("snapshot client: %w", err)
	}
	defer client.Stop()

	loop, err := newDisplayLoop(cfg, client, logger)
	if err != nil {
		return err
	}

	if cfg.OLEDEnabled {
		bus, err := sensors.OpenI2C(cfg.I2CBus)
		if err != nil {
			return err
		}
		defer bus.Close()
		panel, err := newOLEDPanel(bus)
		if err != nil {
			return err
		}
		defer panel.Close()
		if err := panel.Splash(); err != nil {
			logger.Warn("display: OLED splash error", "err", err)
		}
		loop.oled = panel
		logger.Info("display: OLED mirror enabled")
	}

	web := &webServer{
		frames:      loop.frames,
		states:      loop.states,
		raster:      loop.raster,
		hub:         loop.hub,
		broker:      b,
		calibration: cfg.TopicCalibration,
		logger:      logger,
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           web.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("display: web server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	ticker := time.NewTicker(cfg.RenderInterval)
	defer ticker.Stop()
	logger.Info("display: starting render loop", "interval", cfg.RenderInterval)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err := srv.Shutdown(shutdownCtx)
			cancel()
			return err
		case err := <-errc:
			return fmt.Errorf("web server: %w", err)
		case <-ticker.C:
			// A slow tick delays the next one; ticks never overlap.
			loop.tick(ctx)
		}
	}
}

// displayLoop holds what the render tick touches. Only tick mutates the
// renderer; handlers read frames and states through Latest.
type displayLoop struct {
	source   telemetry.Source
	renderer *hud.Renderer
	raster   *raster.Rasterizer
	frames   *telemetry.Latest[hud.Frame]
	states   *telemetry.Latest[telemetry.State]
	hub      *frameHub
	oled     *oledPanel
	logger   *slog.Logger

	width, height int
	ticks         int
	hasData       bool
}

func newDisplayLoop(cfg *config.Config, source telemetry.Source, logger *slog.Logger) (*displayLoop, error) {
	r, err := raster.New(raster.Options{})
	if err != nil {
		return nil, err
	}
	return &displayLoop{
		source:   source,
		renderer: hud.NewRenderer(hud.Options{Seed: uint64(time.Now().UnixNano())}),
		raster:   r,
		frames:   &telemetry.Latest[hud.Frame]{},
		states:   &telemetry.Latest[telemetry.State]{},
		hub:      newFrameHub(),
		logger:   logger,
		width:    cfg.CanvasWidth,
		height:   cfg.CanvasHeight,
	}, nil
}

func (d *displayLoop) tick(ctx context.Context) {
	st, ok := d.source.Snapshot(ctx)
	if !ok {
		return
	}
	if !d.hasData {
		d.hasData = true
		d.logger.Info("display: telemetry available", "seq", st.Seq)
	}
	d.states.Store(st)

	f := d.renderer.RenderFrame(st, d.width, d.height)
	d.frames.Store(f)
	d.ticks++

	if d.hub.count() > 0 {
		msg, err := json.Marshal(f)
		if err != nil {
			d.logger.Error("display: frame marshal error", "err", err)
		} else {
			d.hub.broadcast(msg)
		}
	}

	if d.oled != nil && d.ticks%oledEvery == 1 {
		if err := d.oled.Show(d.raster.Render(f), st); err != nil {
			d.logger.Warn("display: OLED update error", "err", err)
		}
	}
}
