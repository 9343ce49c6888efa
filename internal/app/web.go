// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/sphere_hud/internal/hud"
	"github.com/relabs-tech/sphere_hud/internal/raster"
	"github.com/relabs-tech/sphere_hud/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is a calibration request from the browser.
type WSMessage struct {
	Action string `json:"action"` // capture, reset
}

// WSResponse acknowledges a WSMessage.
type WSResponse struct {
	Type    string `json:"type"` // ok, error
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	wsWriteWait  = 2 * time.Second
	wsClientSlot = 4 // frames buffered per websocket client
)

// frameHub fans rendered frames out to websocket clients. A client that
// cannot keep up loses frames, it never stalls the render tick.
type frameHub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

func newFrameHub() *frameHub {
	return &frameHub{clients: make(map[chan []byte]struct{})}
}

func (h *frameHub) subscribe() chan []byte {
	ch := make(chan []byte, wsClientSlot)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *frameHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

func (h *frameHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *frameHub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// webServer exposes the latest frame as PNG and JSON, and forwards
// calibration commands to the collector.
type webServer struct {
	frames      *telemetry.Latest[hud.Frame]
	states      *telemetry.Latest[telemetry.State]
	raster      *raster.Rasterizer
	hub         *frameHub
	broker      telemetry.Broker
	calibration string
	logger      *slog.Logger
}

func (s *webServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/frame.png", s.handlePNG)
	mux.HandleFunc("/api/frame", s.handleFrame)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/ws/frame", s.handleFrameWS)
	mux.HandleFunc("/ws/calibration", s.handleCalibrationWS)
	return mux
}

func (s *webServer) handlePNG(w http.ResponseWriter, r *http.Request) {
	f, ok := s.frames.Load()
	if !ok {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	var buf bytes.Buffer
	if err := s.raster.EncodePNG(&buf, f); err != nil {
		s.logger.Error("web: png encode error", "err", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *webServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	f, ok := s.frames.Load()
	if !ok {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, f, s.logger)
}

func (s *webServer) handleState(w http.ResponseWriter, r *http.Request) {
	st, ok := s.states.Load()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, st, s.logger)
}

func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("web: json encode error", "err", err)
	}
}

// handleFrameWS streams every rendered frame as a JSON text message.
func (s *webServer) handleFrameWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("web: websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)
	s.logger.Info("web: frame stream client connected", "remote", r.RemoteAddr)

	// Reader goroutine notices the close handshake.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Info("web: frame stream client gone", "err", err)
				return
			}
		}
	}
}

// handleCalibrationWS forwards capture/reset requests to the collector.
func (s *webServer) handleCalibrationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("calibration: websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("calibration: websocket read error", "err", err)
			}
			return
		}

		resp := s.forwardCommand(msg)
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Warn("calibration: websocket write error", "err", err)
			return
		}
	}
}

func (s *webServer) forwardCommand(msg WSMessage) WSResponse {
	payload, err := json.Marshal(telemetry.Command{Action: msg.Action})
	if err != nil {
		return WSResponse{Type: "error", Action: msg.Action, Message: err.Error()}
	}
	if _, err := telemetry.ParseCommand(payload); err != nil {
		return WSResponse{Type: "error", Action: msg.Action, Message: err.Error()}
	}
	if err := s.broker.Publish(s.calibration, payload, false); err != nil {
		return WSResponse{Type: "error", Action: msg.Action, Message: err.Error()}
	}
	s.logger.Info("calibration: command forwarded", "action", msg.Action)
	return WSResponse{Type: "ok", Action: msg.Action}
}
