package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultMQTTTopic is the topic pose messages are published to when MQTT
// fan-out is enabled.
const DefaultMQTTTopic = "camera/pose"

// MQTTPublisher mirrors outbound telemetry to an MQTT broker, for consumers
// that prefer a broker over raw UDP. Publishing is best-effort at QoS 0,
// matching the delivery guarantees of the datagram path.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

// NewMQTTPublisher connects to the broker (e.g. "tcp://localhost:1883") and
// returns a publisher for topic.
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, token.Error())
	}

	if topic == "" {
		topic = DefaultMQTTTopic
	}
	return &MQTTPublisher{client: client, topic: topic}, nil
}

// Publish sends m to the configured topic without waiting for delivery.
func (p *MQTTPublisher) Publish(m Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry: %w", err)
	}
	p.client.Publish(p.topic, 0, false, payload)
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
