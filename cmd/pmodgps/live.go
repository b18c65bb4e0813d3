package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"pmodgps/internal/config"
	"pmodgps/internal/gps"
	"pmodgps/internal/metrics"
	"pmodgps/internal/mqtt"
	"pmodgps/internal/receiver"
	"pmodgps/internal/udp"
	"pmodgps/internal/web"
)

func gpsConfigFrom(cfg config.Config) gps.Config {
	out := gps.Config{
		Source:           cfg.GPS.Source,
		Device:           cfg.GPS.Device,
		Baud:             cfg.GPS.Baud,
		Addr:             cfg.GPS.Addr,
		ReconnectDelay:   cfg.GPS.ReconnectDelay,
		ReplayPath:       cfg.Replay.Path,
		ReplaySpeed:      cfg.Replay.Speed,
		ReplayLoop:       cfg.Replay.Loop,
		MaxSentenceBytes: cfg.GPS.MaxSentenceBytes,
		Reset: receiver.Config{
			Enable:       cfg.Reset.Enable,
			Chip:         cfg.Reset.Chip,
			GPIO:         cfg.Reset.GPIO,
			Hold:         cfg.Reset.Hold,
			DiscardLines: cfg.Reset.DiscardLines,
		},
		HistorySize: cfg.Web.SentenceHistory,
	}
	if cfg.Record.Enable {
		out.RecordPath = cfg.Record.Path
	}
	return out
}

// outputs owns the sinks built from config.
type outputs struct {
	sinks  []gps.Sink
	stream *web.UpdateBroadcaster
	udp    *udp.Broadcaster
	mqtt   *mqtt.Publisher
}

func (o *outputs) Close() {
	if o.udp != nil {
		_ = o.udp.Close()
	}
	if o.mqtt != nil {
		o.mqtt.Close()
	}
}

// connectMQTT is swapped out in tests.
var connectMQTT = mqtt.Connect

func buildOutputs(cfg config.Config) (*outputs, error) {
	o := &outputs{}
	if cfg.Web.Enable {
		o.stream = web.NewUpdateBroadcaster()
		o.sinks = append(o.sinks, o.stream)
	}
	if cfg.UDP.Enable {
		b, err := udp.NewBroadcaster(cfg.UDP.Dest)
		if err != nil {
			return nil, fmt.Errorf("udp broadcaster init failed: %w", err)
		}
		o.udp = b
		o.sinks = append(o.sinks, b)
		log.Printf("udp enabled dest=%s", cfg.UDP.Dest)
	}
	if cfg.MQTT.Enable {
		p, err := connectMQTT(mqtt.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         byte(cfg.MQTT.QoS),
			Retain:      cfg.MQTT.Retain,
		})
		if err != nil {
			// Decoding keeps running without the broker.
			log.Printf("mqtt init failed: %v", err)
		} else {
			o.mqtt = p
			o.sinks = append(o.sinks, p)
		}
	}
	return o, nil
}

func runLive(ctx context.Context, cfg config.Config) error {
	m := metrics.New()

	out, err := buildOutputs(cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	svc := gps.New(gpsConfigFrom(cfg), out.sinks...)
	svc.SetMetrics(m)
	if err := svc.Start(ctx); err != nil {
		if !cfg.Web.Enable {
			return err
		}
		log.Printf("gps init failed: %v", err)
	}
	defer svc.Close()

	if cfg.Web.Enable {
		srv := &http.Server{
			Addr:              cfg.Web.Listen,
			Handler:           web.Handler(svc, out.stream, m.Handler()),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("web listening addr=%s", cfg.Web.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("web server stopped: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	<-ctx.Done()
	return nil
}
