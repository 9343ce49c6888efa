// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"sync"
)

// Broker is the publish/subscribe transport between the collector and the
// display processes. Topics are matched exactly.
type Broker interface {
	Publish(topic string, payload []byte, retained bool) error
	Subscribe(topic string, handler func(payload []byte)) error
	Unsubscribe(topic string) error
}

// LoopbackBroker delivers messages in process, synchronously on the
// publishing goroutine. It is used by the all-in-one binary and in tests.
type LoopbackBroker struct {
	mu       sync.Mutex
	subs     map[string][]func([]byte)
	retained map[string][]byte
}

// NewLoopbackBroker returns an empty in-process broker.
func NewLoopbackBroker() *LoopbackBroker {
	return &LoopbackBroker{
		subs:     make(map[string][]func([]byte)),
		retained: make(map[string][]byte),
	}
}

func (b *LoopbackBroker) Publish(topic string, payload []byte, retained bool) error {
	msg := append([]byte(nil), payload...)

	b.mu.Lock()
	if retained {
		b.retained[topic] = msg
	}
	handlers := append([]func([]byte){}, b.subs[topic]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (b *LoopbackBroker) Subscribe(topic string, handler func([]byte)) error {
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], handler)
	msg, ok := b.retained[topic]
	b.mu.Unlock()

	if ok {
		handler(msg)
	}
	return nil
}

func (b *LoopbackBroker) Unsubscribe(topic string) error {
	b.mu.Lock()
	delete(b.subs, topic)
	b.mu.Unlock()
	return nil
}
