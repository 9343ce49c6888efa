// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"context"
	"sync/atomic"
)

// Latest is a single-slot exchange: the writer replaces the value, readers
// always get the newest complete one and never block.
type Latest[T any] struct {
	p atomic.Pointer[T]
}

// Store publishes v. The caller must not mutate v afterwards.
func (l *Latest[T]) Store(v T) {
	l.p.Store(&v)
}

// Load returns the newest value and whether one was ever stored.
func (l *Latest[T]) Load() (T, bool) {
	p := l.p.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Snapshot lets a Latest[State] serve as a Source.
func (l *Latest[T]) Snapshot(context.Context) (T, bool) {
	return l.Load()
}

// Source provides telemetry snapshots to the renderer.
type Source interface {
	Snapshot(ctx context.Context) (State, bool)
}
