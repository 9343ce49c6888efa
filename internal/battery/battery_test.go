// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package battery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCapacity(t *testing.T, v string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "capacity")
	require.NoError(t, os.WriteFile(p, []byte(v), 0o644))
	return p
}

func TestRead(t *testing.T) {
	v, err := Reader{Path: writeCapacity(t, "87\n")}.Read()
	require.NoError(t, err)
	assert.Equal(t, 87, v)

	v, err = Reader{Path: writeCapacity(t, "130")}.Read()
	require.NoError(t, err)
	assert.Equal(t, 100, v)
}

func TestReadErrors(t *testing.T) {
	_, err := Reader{Path: filepath.Join(t.TempDir(), "missing")}.Read()
	assert.ErrorIs(t, err, ErrNoBattery)

	_, err = Reader{Path: writeCapacity(t, "full")}.Read()
	assert.Error(t, err)
}

func TestPollStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	path := writeCapacity(t, "42")
	got := make(chan int, 10)
	done := make(chan struct{})
	go func() {
		Reader{Path: path}.Poll(ctx, time.Millisecond, func(v int) {
			select {
			case got <- v:
			default:
			}
		}, nil)
		close(done)
	}()

	assert.Equal(t, 42, <-got)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poll did not stop")
	}
}
