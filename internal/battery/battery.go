// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package battery reads the charge level from the Linux power supply class.
package battery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPath is the usual capacity attribute of the first battery.
const DefaultPath = "/sys/class/power_supply/BAT0/capacity"

// ErrNoBattery means the capacity attribute does not exist.
var ErrNoBattery = errors.New("battery: no capacity attribute")

// Reader reads a sysfs capacity file.
type Reader struct {
	Path string
}

// Read returns the charge in percent, clamped to 0..100.
func (r Reader) Read() (int, error) {
	path := r.Path
	if path == "" {
		path = DefaultPath
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrNoBattery
	}
	if err != nil {
		return 0, fmt.Errorf("battery: read %s: %w", path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("battery: parse %s: %w", path, err)
	}
	return max(0, min(100, v)), nil
}

// Poll reads the battery every interval until ctx is done, calling fn on
// each success and onErr on each failure. The first read happens
// immediately.
func (r Reader) Poll(ctx context.Context, interval time.Duration, fn func(int), onErr func(error)) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if v, err := r.Read(); err != nil {
			if onErr != nil {
				onErr(err)
			}
		} else {
			fn(v)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
