// internal/publish/mqtt.go
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tamzrod/solax-monitor/internal/status"
)

const (
	availabilityOnline  = "online"
	availabilityOffline = "offline"

	publishTimeout = 5 * time.Second
)

type Config struct {
	Broker   string // tcp://host:1883
	Topic    string // base topic, no trailing slash
	ClientID string
}

// sendFunc publishes one retained QoS 0 message.
type sendFunc func(topic string, payload []byte) error

// Publisher mirrors the status record onto MQTT as retained messages:
// <topic>/status carries the JSON record, <topic>/availability online|offline.
type Publisher struct {
	topic string
	send  sendFunc
	close func()
}

// Connect dials the broker once. The availability topic is set as
// last will so a dead daemon reads offline.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("publish: broker required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("publish: topic required")
	}

	avail := availabilityTopic(cfg.Topic)

	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(5 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetWill(avail, availabilityOffline, 0, true)
	opts.OnConnect = func(c mqtt.Client) {
		log.Printf("mqtt connected (broker=%s)", cfg.Broker)
		c.Publish(avail, 0, true, availabilityOnline)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Printf("mqtt connection lost (broker=%s): %v", cfg.Broker, err)
	}

	c := mqtt.NewClient(opts)
	if tok := c.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("publish: connect %s: %w", cfg.Broker, tok.Error())
	}

	send := func(topic string, payload []byte) error {
		tok := c.Publish(topic, 0, true, payload)
		if !tok.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publish: %s timed out", topic)
		}
		return tok.Error()
	}

	p := newPublisher(cfg.Topic, send)
	p.close = func() {
		if err := send(avail, []byte(availabilityOffline)); err != nil {
			log.Printf("mqtt offline publish failed: %v", err)
		}
		c.Disconnect(250)
	}
	return p, nil
}

func newPublisher(topic string, send sendFunc) *Publisher {
	return &Publisher{topic: topic, send: send}
}

// Publish sends one status record.
func (p *Publisher) Publish(rec status.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("publish: encode: %w", err)
	}
	return p.send(statusTopic(p.topic), payload)
}

// Close marks the daemon offline and disconnects.
func (p *Publisher) Close() {
	if p == nil || p.close == nil {
		return
	}
	p.close()
}

func statusTopic(base string) string       { return base + "/status" }
func availabilityTopic(base string) string { return base + "/availability" }
