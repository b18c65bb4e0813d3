package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pmodgps/internal/config"
)

func main() {
	var configPath, decodePath, summaryPath string
	flag.StringVar(&configPath, "config", "./pmodgps.yaml", "Path to YAML config")
	flag.StringVar(&decodePath, "decode", "", "Decode an NMEA capture file to JSON lines on stdout and exit")
	flag.StringVar(&summaryPath, "summary", "", "Print a summary of a replay log and exit")
	flag.Parse()

	if decodePath != "" {
		os.Exit(runDecodeFile(decodePath, os.Stdout, os.Stderr))
	}
	if summaryPath != "" {
		if err := printCaptureSummary(summaryPath, os.Stdout); err != nil {
			log.Fatalf("summary failed: %v", err)
		}
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("pmodgps starting source=%s", cfg.GPS.Source)
	if err := runLive(ctx, cfg); err != nil {
		log.Fatalf("pmodgps failed: %v", err)
	}
	log.Printf("pmodgps stopping")
}
