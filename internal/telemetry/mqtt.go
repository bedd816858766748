package telemetry

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// MQTTPublisher publishes snapshots to a broker. It connects on the first
// Publish, so cycles that publish nothing never wait on the broker. The
// monitor is only awake for a few seconds so there is no reconnect handling.
type MQTTPublisher struct {
	client paho.Client
	broker string
	topic  string
}

func NewMQTTPublisher(broker, clientID, topic string) *MQTTPublisher {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(false).
		SetConnectTimeout(connectTimeout)

	return &MQTTPublisher{
		client: paho.NewClient(opts),
		broker: broker,
		topic:  topic,
	}
}

func (p *MQTTPublisher) connect() error {
	if p.client.IsConnected() {
		return nil
	}
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connection to %s timed out", p.broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", p.broker, err)
	}
	return nil
}

func (p *MQTTPublisher) Publish(s Snapshot) error {
	payload, err := FormatPayload(s)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	if err := p.connect(); err != nil {
		return err
	}

	// QoS 1 and retained so late subscribers see the last reading.
	token := p.client.Publish(p.topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker if Publish connected.
func (p *MQTTPublisher) Close() error {
	if p.client.IsConnected() {
		p.client.Disconnect(1000) // 1 second timeout
	}
	return nil
}
