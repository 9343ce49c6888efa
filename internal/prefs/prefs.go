// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package prefs persists user preferences that change at runtime, such as
// the calibration offset captured from the HUD.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/sphere_hud/internal/orientation"
)

// Preferences is the on-disk document.
type Preferences struct {
	Offset       orientation.Offset `yaml:"offset"`
	UseBearing   *bool              `yaml:"use_bearing,omitempty"`
	FlipVertical *bool              `yaml:"flip_vertical,omitempty"`
	HideGauges   *bool              `yaml:"hide_gauges,omitempty"`
}

// Store is a YAML file backed preference store. It satisfies
// orientation.OffsetStore. A missing file reads as defaults.
type Store struct {
	mu    sync.Mutex
	path  string
	prefs Preferences
}

// Open loads the preferences at path. An empty path keeps everything in
// memory.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.prefs); err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	return s, nil
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Offset implements orientation.OffsetStore.
func (s *Store) Offset() orientation.Offset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Offset
}

// SetOffset implements orientation.OffsetStore.
func (s *Store) SetOffset(o orientation.Offset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.prefs.Offset
	s.prefs.Offset = o
	if err := s.saveLocked(); err != nil {
		s.prefs.Offset = prev
		return err
	}
	return nil
}

// saveLocked writes through a temp file so a crash never leaves a torn file.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(&s.prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*")
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Bool resolves an optional preference against a default.
func Bool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
