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
	"os"

	"github.com/dustin/go-humanize"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

// RunConsole prints every telemetry broadcast until ctx is cancelled.
func RunConsole(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("component", "console")

	broker, err := telemetry.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer broker.Close()
	logger.Info("console: connected to MQTT broker", "broker", cfg.MQTTBroker)

	if err := subscribeConsole(broker, cfg.TopicSnapshot, os.Stdout, logger); err != nil {
		return err
	}
	defer broker.Unsubscribe(cfg.TopicSnapshot)
	logger.Info("console: subscribed", "topic", cfg.TopicSnapshot)

	<-ctx.Done()
	logger.Info("console: shutting down")
	return nil
}

func subscribeConsole(b telemetry.Broker, topic string, out io.Writer, logger *slog.Logger) error {
	return b.Subscribe(topic, func(payload []byte) {
		var st telemetry.State
		if err := json.Unmarshal(payload, &st); err != nil {
			logger.Warn("console: snapshot unmarshal error", "err", err)
			return
		}
		fmt.Fprintln(out, formatState(st))
	})
}

// formatState renders one snapshot as two console lines.
func formatState(st telemetry.State) string {
	var trail float64
	for _, s := range st.Track {
		trail += s.Distance
	}
	gps := "no fix"
	if st.LocationAvailable {
		gps = fmt.Sprintf("±%s", humanize.SIWithDigits(st.Accuracy, 1, "m"))
	}
	return fmt.Sprintf(
		"[POSE] #%d  ROLL=%7.2f  PITCH=%7.2f  YAW=%7.2f  HDG=%6.1f\n"+
			"[NAV]  SPD=%6.1f km/h (%+.1f/s)  ALT=%s m (%+.1f/s)  BATT=%3d%%  GPS %d/%d %s  TRACK %d pts %s range %s",
		st.Seq, st.Roll, st.Pitch, st.Yaw, st.Heading,
		st.Speed, st.SpeedRate, humanize.Comma(int64(st.Altitude)), st.AltitudeRate,
		st.Battery, st.SatsUsed, st.SatsTotal, gps,
		len(st.Track), humanize.SIWithDigits(trail, 1, "m"), st.Range,
	)
}
