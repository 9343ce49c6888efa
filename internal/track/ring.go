// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package track

// Sample is one track segment: how far and in which initial bearing the
// vehicle moved since the previous retained fix.
type Sample struct {
	Distance float64 `json:"d"` // meters
	Bearing  float64 `json:"b"` // degrees
}

// Ring is a fixed-capacity buffer of samples. At(0) is the most recent;
// once full, each Push overwrites the oldest.
type Ring struct {
	buf  []Sample
	head int // next write position
	size int
}

// NewRing allocates a ring for n samples.
func NewRing(n int) *Ring {
	if n < 1 {
		n = 1
	}
	return &Ring{buf: make([]Sample, n)}
}

// Push appends s as the most recent sample.
func (r *Ring) Push(s Sample) {
	r.buf[r.head] = s
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// At returns the i-th most recent sample. Out of range indexes return the
// zero sample.
func (r *Ring) At(i int) Sample {
	if i < 0 || i >= r.size {
		return Sample{}
	}
	idx := (r.head - 1 - i + len(r.buf)) % len(r.buf)
	return r.buf[idx]
}

// Len is the number of stored samples.
func (r *Ring) Len() int { return r.size }

// Cap is the ring capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Snapshot copies the stored samples, most recent first.
func (r *Ring) Snapshot() []Sample {
	out := make([]Sample, r.size)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}
