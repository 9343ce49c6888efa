// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/gps"
	"github.com/relabs-tech/sphere_hud/internal/imu"
	"github.com/relabs-tech/sphere_hud/internal/orientation"
	"github.com/relabs-tech/sphere_hud/internal/prefs"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// Pipeline is the collector core: sensor samples go through the estimator,
// fixes and scalars go to the merger, and the merger publishes the latest
// telemetry state.
type Pipeline struct {
	estimator *orientation.Estimator
	merger    *telemetry.Merger
	latest    *telemetry.Latest[telemetry.State]
	logger    *slog.Logger

	mu          sync.Mutex
	declination float64
	fixDecl     bool // declination comes from the receiver's variation
	degenerate  int
}

// NewPipeline wires an estimator and a merger from the configuration. The
// preference store may override USE_BEARING, FLIP_VERTICAL and HIDE_GAUGES.
func NewPipeline(cfg *config.Config, store *prefs.Store, logger *slog.Logger) *Pipeline {
	p := store.Get()
	est := orientation.NewEstimator(orientation.Options{
		UseBearing: prefs.Bool(p.UseBearing, cfg.UseBearing),
	}, store)

	latest := &telemetry.Latest[telemetry.State]{}
	merger := telemetry.NewMerger(latest, cfg.RadarRangeDivisor)
	merger.SetFlags(prefs.Bool(p.FlipVertical, cfg.FlipVertical), prefs.Bool(p.HideGauges, cfg.HideGauges))

	return &Pipeline{
		estimator:   est,
		merger:      merger,
		latest:      latest,
		logger:      logger,
		declination: cfg.MagneticDeclination,
	}
}

// Latest is the published telemetry, suitable as a telemetry.Source.
func (p *Pipeline) Latest() *telemetry.Latest[telemetry.State] { return p.latest }

// Merger exposes the single telemetry writer for scalar inputs.
func (p *Pipeline) Merger() *telemetry.Merger { return p.merger }

// HandleSample feeds one raw sample. It must be called from one goroutine.
func (p *Pipeline) HandleSample(s imu.RawSample) {
	p.mu.Lock()
	decl := p.declination
	p.mu.Unlock()

	st, ok := p.estimator.Update(s, decl)
	if !ok {
		p.mu.Lock()
		p.degenerate++
		n := p.degenerate
		p.mu.Unlock()
		// one line per 100 degenerate samples is enough
		if n%100 == 1 {
			p.logger.Warn("collector: degenerate sample, holding orientation", "source", s.Source, "count", n)
		}
		return
	}
	p.merger.ObserveOrientation(st)
}

// HandleFix feeds one position fix. The course becomes the estimator's
// bearing and a reported magnetic variation replaces the configured
// declination.
func (p *Pipeline) HandleFix(f gps.Fix) {
	p.estimator.SetBearing(f.CourseDeg, f.Available && f.HasCourse)
	if f.Available && f.Variation != 0 {
		p.mu.Lock()
		if !p.fixDecl {
			p.logger.Info("collector: using receiver magnetic variation", "deg", f.Variation)
		}
		p.declination = f.Variation
		p.fixDecl = true
		p.mu.Unlock()
	}
	p.merger.ObserveFix(f)
}

// HandleCommand applies a calibration command.
func (p *Pipeline) HandleCommand(c telemetry.Command) error {
	switch c.Action {
	case telemetry.ActionCapture:
		off, err := p.estimator.CaptureOffset()
		if err != nil {
			return err
		}
		p.logger.Info("collector: calibration captured", "roll", off.Roll, "pitch", off.Pitch)
	case telemetry.ActionReset:
		if err := p.estimator.ResetOffset(); err != nil {
			return err
		}
		p.logger.Info("collector: calibration reset")
	default:
		return fmt.Errorf("unknown calibration action %q", c.Action)
	}
	return nil
}
