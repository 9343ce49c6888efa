// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/sphere_hud/internal/config"
	"github.com/relabs-tech/sphere_hud/internal/hud"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
	"github.com/relabs-tech/sphere_hud/internal/track"
)

func newTestLoop(t *testing.T, src telemetry.Source) *displayLoop {
	t.Helper()
	cfg := config.Default()
	cfg.CanvasWidth, cfg.CanvasHeight = 240, 160
	loop, err := newDisplayLoop(cfg, src, discardLogger())
	require.NoError(t, err)
	return loop
}

func TestDisplayTickWaitsForTelemetry(t *testing.T) {
	var latest telemetry.Latest[telemetry.State]
	loop := newTestLoop(t, &latest)

	loop.tick(context.Background())
	_, ok := loop.frames.Load()
	assert.False(t, ok)

	latest.Store(telemetry.State{Seq: 9, Speed: 42})
	loop.tick(context.Background())
	f, ok := loop.frames.Load()
	require.True(t, ok)
	assert.Equal(t, 240, f.Width)
	assert.NotEmpty(t, f.Primitives)

	st, ok := loop.states.Load()
	require.True(t, ok)
	assert.Equal(t, uint64(9), st.Seq)
}

func TestDisplayTickBroadcastsFrames(t *testing.T) {
	var latest telemetry.Latest[telemetry.State]
	latest.Store(telemetry.State{Seq: 1})
	loop := newTestLoop(t, &latest)

	ch := loop.hub.subscribe()
	defer loop.hub.unsubscribe(ch)

	loop.tick(context.Background())
	select {
	case msg := <-ch:
		var f hud.Frame
		require.NoError(t, json.Unmarshal(msg, &f))
		assert.Equal(t, 160, f.Height)
	default:
		t.Fatal("no frame broadcast")
	}
}

func TestFrameHubDropsForSlowClients(t *testing.T) {
	h := newFrameHub()
	ch := h.subscribe()
	for i := 0; i < wsClientSlot+3; i++ {
		h.broadcast([]byte("x"))
	}
	assert.Len(t, ch, wsClientSlot)
	h.unsubscribe(ch)
	assert.Zero(t, h.count())
}

func newTestWeb(t *testing.T) (*webServer, *displayLoop, *telemetry.LoopbackBroker) {
	t.Helper()
	var latest telemetry.Latest[telemetry.State]
	latest.Store(telemetry.State{Seq: 3, Range: track.RangeSmall})
	loop := newTestLoop(t, &latest)
	b := telemetry.NewLoopbackBroker()
	return &webServer{
		frames:      loop.frames,
		states:      loop.states,
		raster:      loop.raster,
		hub:         loop.hub,
		broker:      b,
		calibration: "hud/calibration",
		logger:      discardLogger(),
	}, loop, b
}

func TestWebFrameEndpoints(t *testing.T) {
	web, loop, _ := newTestWeb(t)
	srv := httptest.NewServer(web.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/frame.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	loop.tick(context.Background())

	resp, err = http.Get(srv.URL + "/api/frame.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 240, 160), img.Bounds())

	resp2, err := http.Get(srv.URL + "/api/state")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var st telemetry.State
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&st))
	assert.Equal(t, uint64(3), st.Seq)
	assert.Equal(t, track.RangeSmall, st.Range)
}

func TestWebCalibrationForwarding(t *testing.T) {
	web, _, b := newTestWeb(t)
	got := make(chan []byte, 1)
	require.NoError(t, b.Subscribe("hud/calibration", func(p []byte) { got <- p }))

	srv := httptest.NewServer(web.routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/calibration"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "capture"}))
	var resp WSResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "ok", resp.Type)

	select {
	case p := <-got:
		cmd, err := telemetry.ParseCommand(p)
		require.NoError(t, err)
		assert.Equal(t, telemetry.ActionCapture, cmd.Action)
	case <-time.After(time.Second):
		t.Fatal("command not forwarded")
	}

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "explode"}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp.Type)
	assert.Len(t, got, 0)
}

func TestWebFrameStream(t *testing.T) {
	web, loop, _ := newTestWeb(t)
	srv := httptest.NewServer(web.routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/frame"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return loop.hub.count() == 1 }, time.Second, 5*time.Millisecond)
	loop.tick(context.Background())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var f hud.Frame
	require.NoError(t, json.Unmarshal(msg, &f))
	assert.NotEmpty(t, f.Primitives)
}

func TestOLEDMirror(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 960, 640))
	// bright left half, dark right half
	for y := 0; y < 640; y++ {
		for x := 0; x < 480; x++ {
			frame.Set(x, y, color.White)
		}
	}
	dst := image1bit.NewVerticalLSB(image.Rect(0, 0, oledWidth, oledHeight))
	mirror(dst, frame, telemetry.State{Speed: 123, Battery: 50})

	assert.Equal(t, image1bit.On, dst.BitAt(10, 32))
	assert.Equal(t, image1bit.Off, dst.BitAt(80, 32))

	lit := 0
	for y := 0; y < oledHeight; y++ {
		for x := oledHUDWidth; x < oledWidth; x++ {
			if dst.BitAt(x, y) == image1bit.On {
				lit++
			}
		}
	}
	assert.Positive(t, lit, "status column has text")
}

func TestClampStatus(t *testing.T) {
	assert.Equal(t, 9999, clampStatus(123456))
	assert.Equal(t, -999, clampStatus(-5000))
	assert.Equal(t, 42, clampStatus(42))
}
