// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"fmt"
)

// Calibration actions.
const (
	ActionCapture = "capture"
	ActionReset   = "reset"
)

// Command is a calibration request forwarded to the collector.
type Command struct {
	Action string `json:"action"`
}

// ParseCommand decodes and validates a command payload.
func ParseCommand(payload []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(payload, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch c.Action {
	case ActionCapture, ActionReset:
		return c, nil
	}
	return Command{}, fmt.Errorf("unknown calibration action %q", c.Action)
}
