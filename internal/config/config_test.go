package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GPS.Source != "serial" || cfg.GPS.Baud != 9600 || cfg.GPS.MaxSentenceBytes != 128 {
		t.Fatalf("unexpected gps defaults: %+v", cfg.GPS)
	}
	if cfg.GPS.ReconnectDelay != time.Second {
		t.Fatalf("reconnect_delay=%s want 1s", cfg.GPS.ReconnectDelay)
	}
	if cfg.Reset.Hold != 10*time.Millisecond || cfg.Reset.DiscardLines != 4 {
		t.Fatalf("unexpected reset defaults: %+v", cfg.Reset)
	}
	if cfg.Replay.Speed != 1 {
		t.Fatalf("replay.speed=%v want 1", cfg.Replay.Speed)
	}
	if cfg.MQTT.ClientID != "pmodgps" || cfg.MQTT.TopicPrefix != "pmodgps" {
		t.Fatalf("unexpected mqtt defaults: %+v", cfg.MQTT)
	}
	if cfg.Web.Listen != ":8080" || cfg.Web.SentenceHistory != 200 {
		t.Fatalf("unexpected web defaults: %+v", cfg.Web)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeTempConfig(t, `
gps:
  source: serial
  device: /dev/ttyS0
  baud: 4800
  max_sentence_bytes: 96
reset:
  enable: true
  gpio: 17
  hold: 20ms
  discard_lines: 2
record:
  enable: true
  path: ./capture.log
udp:
  enable: true
  dest: 127.0.0.1:10110
mqtt:
  enable: true
  broker: tcp://localhost:1883
  qos: 1
  retain: true
web:
  enable: true
  listen: 127.0.0.1:9000
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GPS.Device != "/dev/ttyS0" || cfg.GPS.Baud != 4800 || cfg.GPS.MaxSentenceBytes != 96 {
		t.Fatalf("unexpected gps: %+v", cfg.GPS)
	}
	if !cfg.Reset.Enable || cfg.Reset.GPIO != 17 || cfg.Reset.Hold != 20*time.Millisecond || cfg.Reset.DiscardLines != 2 {
		t.Fatalf("unexpected reset: %+v", cfg.Reset)
	}
	if cfg.MQTT.QoS != 1 || !cfg.MQTT.Retain {
		t.Fatalf("unexpected mqtt: %+v", cfg.MQTT)
	}
	if cfg.Web.Listen != "127.0.0.1:9000" {
		t.Fatalf("web.listen=%q", cfg.Web.Listen)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad source", "gps:\n  source: usb\n", `gps.source must be serial, tcp or replay (got "usb")`},
		{"tcp needs addr", "gps:\n  source: tcp\n", "gps.addr is required when gps.source=tcp"},
		{"replay needs path", "gps:\n  source: replay\n", "replay.path is required when gps.source=replay"},
		{"small buffer", "gps:\n  max_sentence_bytes: 8\n", "gps.max_sentence_bytes must be >= 16"},
		{"negative baud", "gps:\n  baud: -1\n", "gps.baud must be > 0"},
		{"reset needs gpio", "reset:\n  enable: true\n", "reset.gpio is required when reset.enable is true"},
		{"reset needs serial", "gps:\n  source: tcp\n  addr: 'h:1'\nreset:\n  enable: true\n  gpio: 5\n", "reset can only be used with gps.source=serial"},
		{"record needs path", "record:\n  enable: true\n", "record.path is required when record.enable is true"},
		{"record with replay", "gps:\n  source: replay\nreplay:\n  path: a.log\nrecord:\n  enable: true\n  path: b.log\n", "record cannot be used with gps.source=replay"},
		{"negative speed", "replay:\n  speed: -2\n", "replay.speed must be > 0"},
		{"udp needs dest", "udp:\n  enable: true\n", "udp.dest is required when udp.enable is true"},
		{"mqtt needs broker", "mqtt:\n  enable: true\n", "mqtt.broker is required when mqtt.enable is true"},
		{"mqtt qos", "mqtt:\n  qos: 3\n", "mqtt.qos must be 0, 1 or 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.yaml))
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_TCPSource(t *testing.T) {
	path := writeTempConfig(t, "gps:\n  source: TCP\n  addr: '192.168.1.20:10110'\n  reconnect_delay: 3s\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GPS.Source != "tcp" || cfg.GPS.ReconnectDelay != 3*time.Second {
		t.Fatalf("unexpected gps: %+v", cfg.GPS)
	}
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := writeTempConfig(t, "gps:\n  speed: 1\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "field speed not found") {
		t.Fatalf("err=%v want unknown field error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}
