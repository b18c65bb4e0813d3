package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pmodgps/internal/nmea"
	"pmodgps/internal/replay"
)

type captureSummary struct {
	Segments    int
	Sentences   int
	Malformed   int
	MaxDuration time.Duration
	KindCounts  map[nmea.Kind]int
}

func summarizeCapture(records []replay.Record) captureSummary {
	s := captureSummary{KindCounts: map[nmea.Kind]int{}}
	if len(records) == 0 {
		return s
	}

	dec := nmea.NewDecoder(0)
	origin := time.Duration(0)
	hasSentences := false
	segments := 0

	for _, r := range records {
		if r.Sentence == nil {
			segments++
			origin = r.At
			continue
		}
		hasSentences = true

		s.Sentences++
		at := r.At - origin
		if at < 0 {
			at = 0
		}
		if at > s.MaxDuration {
			s.MaxDuration = at
		}

		kind, err := dec.Decode(r.Line())
		if err != nil {
			s.Malformed++
			continue
		}
		s.KindCounts[kind]++
	}
	if segments == 0 && hasSentences {
		segments = 1
	}
	s.Segments = segments
	return s
}

func printCaptureSummary(path string, w io.Writer) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	recs, err := replay.ReadFile(path)
	if err != nil {
		return err
	}

	s := summarizeCapture(recs)
	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "segments: %d\n", s.Segments)
	fmt.Fprintf(w, "sentences: %d\n", s.Sentences)
	fmt.Fprintf(w, "malformed: %d\n", s.Malformed)
	fmt.Fprintf(w, "max_duration: %s\n", s.MaxDuration)
	fmt.Fprintf(w, "kind_counts:\n")
	for _, k := range nmea.Kinds {
		fmt.Fprintf(w, "  %s: %d\n", k, s.KindCounts[k])
	}
	return nil
}
