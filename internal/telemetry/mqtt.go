// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTBroker adapts a paho client to Broker.
type MQTTBroker struct {
	client  mqtt.Client
	timeout time.Duration
}

// DialMQTT connects to the broker at url (for example tcp://localhost:1883).
func DialMQTT(url, clientID string) (*MQTTBroker, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(url).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", url, token.Error())
	}
	return NewMQTTBroker(client), nil
}

// NewMQTTBroker wraps an already connected client.
func NewMQTTBroker(client mqtt.Client) *MQTTBroker {
	return &MQTTBroker{client: client, timeout: 5 * time.Second}
}

func (b *MQTTBroker) Publish(topic string, payload []byte, retained bool) error {
	token := b.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(b.timeout) {
		return fmt.Errorf("mqtt publish %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

func (b *MQTTBroker) Subscribe(topic string, handler func([]byte)) error {
	token := b.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", topic, err)
	}
	return nil
}

func (b *MQTTBroker) Unsubscribe(topic string) error {
	token := b.client.Unsubscribe(topic)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt unsubscribe %s: %w", topic, err)
	}
	return nil
}

// Close disconnects, giving in-flight work 250 ms to finish.
func (b *MQTTBroker) Close() {
	b.client.Disconnect(250)
}
