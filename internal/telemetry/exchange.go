// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSnapshotTimeout bounds how long a render tick waits for a reply.
const DefaultSnapshotTimeout = 40 * time.Millisecond

// Request asks the collector for the current snapshot.
type Request struct {
	ID      string `json:"id"`
	ReplyTo string `json:"reply_to"`
}

// Reply answers a Request. Ready is false until the collector has data.
type Reply struct {
	ID    string `json:"id"`
	Ready bool   `json:"ready"`
	State State  `json:"state"`
}

// Server answers snapshot requests from a Source.
type Server struct {
	broker Broker
	topic  string
	source Source
	logger *slog.Logger
}

// NewServer serves source on the request topic.
func NewServer(b Broker, requestTopic string, source Source, logger *slog.Logger) *Server {
	return &Server{broker: b, topic: requestTopic, source: source, logger: logger}
}

// Start subscribes to the request topic.
func (s *Server) Start() error {
	return s.broker.Subscribe(s.topic, s.handle)
}

// Stop unsubscribes.
func (s *Server) Stop() error {
	return s.broker.Unsubscribe(s.topic)
}

func (s *Server) handle(payload []byte) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil || req.ReplyTo == "" {
		s.logger.Warn("snapshot: bad request", "err", err)
		return
	}

	st, ok := s.source.Snapshot(context.Background())
	out, err := json.Marshal(Reply{ID: req.ID, Ready: ok, State: st})
	if err != nil {
		s.logger.Error("snapshot: encode reply", "err", err)
		return
	}
	if err := s.broker.Publish(req.ReplyTo, out, false); err != nil {
		s.logger.Warn("snapshot: publish reply", "err", err)
	}
}

// Client fetches snapshots from a remote Server. When no reply arrives in
// time it returns the previous snapshot. Client is a Source.
type Client struct {
	broker       Broker
	requestTopic string
	replyTopic   string
	timeout      time.Duration

	mu      sync.Mutex
	pending string
	replies chan State
	last    State
	have    bool
}

// NewClient creates a client with its own reply topic under replyPrefix.
func NewClient(b Broker, requestTopic, replyPrefix string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultSnapshotTimeout
	}
	return &Client{
		broker:       b,
		requestTopic: requestTopic,
		replyTopic:   fmt.Sprintf("%s/%s", replyPrefix, uuid.NewString()),
		timeout:      timeout,
		replies:      make(chan State, 1),
	}
}

// Start subscribes to the reply topic.
func (c *Client) Start() error {
	return c.broker.Subscribe(c.replyTopic, c.onReply)
}

// Stop unsubscribes from the reply topic.
func (c *Client) Stop() error {
	return c.broker.Unsubscribe(c.replyTopic)
}

// Snapshot requests a fresh snapshot and waits at most the configured
// timeout for it. The bool reports whether any snapshot has been seen.
func (c *Client) Snapshot(ctx context.Context) (State, bool) {
	id := uuid.NewString()

	c.mu.Lock()
	c.pending = id
	// Drop a late reply to an earlier request.
	select {
	case <-c.replies:
	default:
	}
	c.mu.Unlock()

	req, _ := json.Marshal(Request{ID: id, ReplyTo: c.replyTopic})
	if err := c.broker.Publish(c.requestTopic, req, false); err != nil {
		return c.fallback()
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case st := <-c.replies:
		c.mu.Lock()
		c.last, c.have = st, true
		c.mu.Unlock()
		return st, true
	case <-timer.C:
	case <-ctx.Done():
	}
	return c.fallback()
}

func (c *Client) fallback() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.have
}

func (c *Client) onReply(payload []byte) {
	var r Reply
	if err := json.Unmarshal(payload, &r); err != nil || !r.Ready {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r.ID != c.pending {
		return
	}
	select {
	case c.replies <- r.State:
	default:
	}
}
