package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GPS    GPSConfig    `yaml:"gps"`
	Reset  ResetConfig  `yaml:"reset"`
	Record RecordConfig `yaml:"record"`
	Replay ReplayConfig `yaml:"replay"`
	UDP    UDPConfig    `yaml:"udp"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Web    WebConfig    `yaml:"web"`
}

type GPSConfig struct {
	// Source is "serial", "tcp" or "replay".
	Source string `yaml:"source"`

	// Device may be empty to auto-detect /dev/ttyACM* or /dev/ttyUSB*.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`

	Addr           string        `yaml:"addr"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`

	MaxSentenceBytes int `yaml:"max_sentence_bytes"`
}

type ResetConfig struct {
	Enable       bool          `yaml:"enable"`
	GPIO         int           `yaml:"gpio"`
	Chip         string        `yaml:"chip"`
	Hold         time.Duration `yaml:"hold"`
	DiscardLines int           `yaml:"discard_lines"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type ReplayConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
	Loop  bool    `yaml:"loop"`
}

type UDPConfig struct {
	Enable bool   `yaml:"enable"`
	Dest   string `yaml:"dest"`
}

type MQTTConfig struct {
	Enable      bool   `yaml:"enable"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
	Retain      bool   `yaml:"retain"`
}

type WebConfig struct {
	Enable          bool   `yaml:"enable"`
	Listen          string `yaml:"listen"`
	SentenceHistory int    `yaml:"sentence_history"`
}

const minSentenceBytes = 16

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}

	cfg.GPS.Source = strings.ToLower(strings.TrimSpace(cfg.GPS.Source))
	if cfg.GPS.Source == "" {
		cfg.GPS.Source = "serial"
	}
	switch cfg.GPS.Source {
	case "serial":
	case "tcp":
		if strings.TrimSpace(cfg.GPS.Addr) == "" {
			return Config{}, fmt.Errorf("gps.addr is required when gps.source=tcp")
		}
	case "replay":
		if strings.TrimSpace(cfg.Replay.Path) == "" {
			return Config{}, fmt.Errorf("replay.path is required when gps.source=replay")
		}
	default:
		return Config{}, fmt.Errorf("gps.source must be serial, tcp or replay (got %q)", cfg.GPS.Source)
	}
	if cfg.GPS.Baud == 0 {
		cfg.GPS.Baud = 9600
	}
	if cfg.GPS.Baud < 0 {
		return Config{}, fmt.Errorf("gps.baud must be > 0")
	}
	if cfg.GPS.ReconnectDelay <= 0 {
		cfg.GPS.ReconnectDelay = 1 * time.Second
	}
	if cfg.GPS.MaxSentenceBytes == 0 {
		cfg.GPS.MaxSentenceBytes = 128
	}
	if cfg.GPS.MaxSentenceBytes < minSentenceBytes {
		return Config{}, fmt.Errorf("gps.max_sentence_bytes must be >= %d", minSentenceBytes)
	}

	if cfg.Reset.Enable {
		if cfg.GPS.Source != "serial" {
			return Config{}, fmt.Errorf("reset can only be used with gps.source=serial")
		}
		if cfg.Reset.GPIO <= 0 {
			return Config{}, fmt.Errorf("reset.gpio is required when reset.enable is true")
		}
	}
	if cfg.Reset.Hold <= 0 {
		cfg.Reset.Hold = 10 * time.Millisecond
	}
	if cfg.Reset.DiscardLines == 0 {
		cfg.Reset.DiscardLines = 4
	}
	if cfg.Reset.DiscardLines < 0 {
		return Config{}, fmt.Errorf("reset.discard_lines must be >= 0")
	}

	if cfg.Record.Enable {
		if cfg.GPS.Source == "replay" {
			return Config{}, fmt.Errorf("record cannot be used with gps.source=replay")
		}
		if strings.TrimSpace(cfg.Record.Path) == "" {
			return Config{}, fmt.Errorf("record.path is required when record.enable is true")
		}
	}

	if cfg.Replay.Speed == 0 {
		cfg.Replay.Speed = 1
	}
	if cfg.Replay.Speed < 0 {
		return Config{}, fmt.Errorf("replay.speed must be > 0")
	}

	if cfg.UDP.Enable && strings.TrimSpace(cfg.UDP.Dest) == "" {
		return Config{}, fmt.Errorf("udp.dest is required when udp.enable is true")
	}

	if cfg.MQTT.Enable && strings.TrimSpace(cfg.MQTT.Broker) == "" {
		return Config{}, fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "pmodgps"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "pmodgps"
	}
	if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
		return Config{}, fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}

	if cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}
	if cfg.Web.SentenceHistory <= 0 {
		cfg.Web.SentenceHistory = 200
	}

	return cfg, nil
}
