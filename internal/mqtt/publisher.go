// Package mqtt publishes decoded records to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"pmodgps/internal/gps"
	"pmodgps/internal/nmea"
)

type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
	Retain      bool
}

const (
	DefaultClientID    = "pmodgps"
	DefaultTopicPrefix = "pmodgps"

	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// client is the subset of paho.Client used here.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

type Publisher struct {
	cfg    Config
	client client
}

// Topic returns "<prefix>/<kind>" with the kind in lower case.
func Topic(prefix string, k nmea.Kind) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return prefix + "/" + strings.ToLower(k.String())
}

// Connect dials the broker and returns a Publisher that reconnects on its own.
func Connect(cfg Config) (*Publisher, error) {
	if strings.TrimSpace(cfg.Broker) == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt connection lost broker=%s: %v", cfg.Broker, err)
		})

	c := paho.NewClient(opts)
	if token := c.Connect(); !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect broker=%s: timeout", cfg.Broker)
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect broker=%s: %w", cfg.Broker, err)
	}
	log.Printf("mqtt connected broker=%s client_id=%s", cfg.Broker, cfg.ClientID)
	return newPublisher(cfg, c), nil
}

func newPublisher(cfg Config, c client) *Publisher {
	return &Publisher{cfg: cfg, client: c}
}

func (p *Publisher) Name() string { return "mqtt" }

// Publish implements gps.Sink.
func (p *Publisher) Publish(u gps.Update) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", u.Kind, err)
	}
	token := p.client.Publish(Topic(p.cfg.TopicPrefix, u.Kind), p.cfg.QoS, p.cfg.Retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish %s: timeout", u.Kind)
	}
	return token.Error()
}

func (p *Publisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Disconnect(250)
}
