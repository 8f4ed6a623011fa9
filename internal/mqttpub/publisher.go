// Package mqttpub pushes each published snapshot to an MQTT broker for
// MQTT-based consumers. Publish-only; the bridge never subscribes.
package mqttpub

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"freesleep-bridge/internal/config"
)

// Publisher holds the broker connection and topic layout.
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
	logger *zap.Logger
}

// New connects to the broker. The availability topic carries a retained
// last-will "offline" so consumers see broker-side disconnects.
func New(cfg *config.MQTTConfig, logger *zap.Logger) (*Publisher, error) {
	availabilityTopic := cfg.TopicPrefix + "/availability"

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetWill(availabilityTopic, "offline", cfg.QoS, true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	p := &Publisher{
		client: client,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		logger: logger,
	}
	if err := p.publish(availabilityTopic, []byte("online")); err != nil {
		logger.Warn("availability publish failed", zap.Error(err))
	}
	return p, nil
}

// PublishState publishes the state document, retained, on <prefix>/state.
func (p *Publisher) PublishState(doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal state document: %w", err)
	}
	return p.publish(p.prefix+"/state", payload)
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, true, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}
	return nil
}

// Close marks the bridge offline and disconnects.
func (p *Publisher) Close() {
	if err := p.publish(p.prefix+"/availability", []byte("offline")); err != nil {
		p.logger.Warn("offline publish failed", zap.Error(err))
	}
	p.client.Disconnect(250)
}
