// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	requestTopic = "hud/snapshot/request"
	replyPrefix  = "hud/snapshot/reply"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLatestEmpty(t *testing.T) {
	var l Latest[State]
	_, ok := l.Load()
	assert.False(t, ok)

	l.Store(State{Seq: 7})
	st, ok := l.Snapshot(context.Background())
	assert.True(t, ok)
	assert.Equal(t, uint64(7), st.Seq)
}

func TestClientReceivesSnapshot(t *testing.T) {
	b := NewLoopbackBroker()
	var latest Latest[State]
	latest.Store(State{Seq: 42, Roll: 12.5})

	srv := NewServer(b, requestTopic, &latest, discardLogger())
	require.NoError(t, srv.Start())

	c := NewClient(b, requestTopic, replyPrefix, 50*time.Millisecond)
	require.NoError(t, c.Start())
	defer c.Stop()

	st, ok := c.Snapshot(context.Background())
	require.True(t, ok)
	assert.Equal(t, uint64(42), st.Seq)
	assert.Equal(t, 12.5, st.Roll)
}

func TestClientFallsBackToLastSnapshot(t *testing.T) {
	b := NewLoopbackBroker()
	c := NewClient(b, requestTopic, replyPrefix, 10*time.Millisecond)
	require.NoError(t, c.Start())

	start := time.Now()
	_, ok := c.Snapshot(context.Background())
	assert.False(t, ok, "nothing seen yet")
	assert.Less(t, time.Since(start), time.Second)

	var latest Latest[State]
	latest.Store(State{Seq: 1})
	srv := NewServer(b, requestTopic, &latest, discardLogger())
	require.NoError(t, srv.Start())
	st, ok := c.Snapshot(context.Background())
	require.True(t, ok)
	assert.Equal(t, uint64(1), st.Seq)

	// Collector gone: the tick still gets the previous snapshot.
	require.NoError(t, srv.Stop())
	latest.Store(State{Seq: 2})
	st, ok = c.Snapshot(context.Background())
	assert.True(t, ok)
	assert.Equal(t, uint64(1), st.Seq)
}

func TestClientIgnoresStaleAndNotReadyReplies(t *testing.T) {
	b := NewLoopbackBroker()
	c := NewClient(b, requestTopic, replyPrefix, 10*time.Millisecond)
	require.NoError(t, c.Start())

	stale, _ := json.Marshal(Reply{ID: "old", Ready: true, State: State{Seq: 9}})
	require.NoError(t, b.Publish(c.replyTopic, stale, false))

	var empty Latest[State]
	srv := NewServer(b, requestTopic, &empty, discardLogger())
	require.NoError(t, srv.Start())

	_, ok := c.Snapshot(context.Background())
	assert.False(t, ok)
}

func TestClientHonoursContext(t *testing.T) {
	b := NewLoopbackBroker()
	c := NewClient(b, requestTopic, replyPrefix, time.Hour)
	require.NoError(t, c.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok := c.Snapshot(ctx)
	assert.False(t, ok)
}

func TestLoopbackRetained(t *testing.T) {
	b := NewLoopbackBroker()
	require.NoError(t, b.Publish("a", []byte("x"), true))
	require.NoError(t, b.Publish("b", []byte("y"), false))

	var got []string
	require.NoError(t, b.Subscribe("a", func(p []byte) { got = append(got, string(p)) }))
	require.NoError(t, b.Subscribe("b", func(p []byte) { got = append(got, string(p)) }))
	assert.Equal(t, []string{"x"}, got)

	require.NoError(t, b.Unsubscribe("a"))
	require.NoError(t, b.Publish("a", []byte("z"), false))
	assert.Equal(t, []string{"x"}, got)
}

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand([]byte(`{"action":"capture"}`))
	require.NoError(t, err)
	assert.Equal(t, ActionCapture, c.Action)

	_, err = ParseCommand([]byte(`{"action":"explode"}`))
	assert.Error(t, err)
	_, err = ParseCommand([]byte(`not json`))
	assert.Error(t, err)
}
