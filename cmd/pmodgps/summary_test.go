package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pmodgps/internal/nmea"
	"pmodgps/internal/replay"
)

func TestSummarizeCapture(t *testing.T) {
	gga := []byte("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47")
	vtg := []byte("$GPVTG,054.7,T,034.4,M,005.5,N,010.2,K,A*25")
	bad := []byte("$GPGGA,123519")

	recs := []replay.Record{
		{At: 0, Sentence: nil},
		{At: 0, Sentence: gga},
		{At: 200 * time.Millisecond, Sentence: vtg},
		{At: 300 * time.Millisecond, Sentence: bad},
		{At: 0, Sentence: nil},
		{At: 1 * time.Second, Sentence: gga},
	}

	s := summarizeCapture(recs)
	if s.Segments != 2 {
		t.Fatalf("segments=%d want %d", s.Segments, 2)
	}
	if s.Sentences != 4 {
		t.Fatalf("sentences=%d want %d", s.Sentences, 4)
	}
	if s.Malformed != 1 {
		t.Fatalf("malformed=%d want %d", s.Malformed, 1)
	}
	if s.KindCounts[nmea.GGA] != 2 || s.KindCounts[nmea.VTG] != 1 {
		t.Fatalf("kind counts=%v", s.KindCounts)
	}
	if s.MaxDuration != 1*time.Second {
		t.Fatalf("maxDuration=%s want %s", s.MaxDuration, 1*time.Second)
	}
}

func TestSummarizeCapture_NoStartIsOneSegment(t *testing.T) {
	s := summarizeCapture([]replay.Record{{At: 0, Sentence: []byte("$GPGGA*56")}})
	if s.Segments != 1 {
		t.Fatalf("segments=%d want 1", s.Segments)
	}
	if s := summarizeCapture(nil); s.Segments != 0 || s.Sentences != 0 {
		t.Fatalf("empty summary=%+v", s)
	}
}

func TestPrintCaptureSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	if err := os.WriteFile(path, []byte(capture), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// The free-text line is not a valid replay record.
	if err := printCaptureSummary(path, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for invalid replay log")
	}

	clean := strings.Replace(capture, "not nmea at all\n", "", 1)
	if err := os.WriteFile(path, []byte(clean), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	var out bytes.Buffer
	if err := printCaptureSummary(path, &out); err != nil {
		t.Fatalf("printCaptureSummary() error: %v", err)
	}
	for _, want := range []string{"segments: 1", "sentences: 3", "malformed: 1", "GGA: 1", "VTG: 1"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("summary missing %q:\n%s", want, out.String())
		}
	}
	if err := printCaptureSummary(" ", &out); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
