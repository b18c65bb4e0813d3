package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"pmodgps/internal/nmea"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.Decoded(nmea.GGA)
	m.Decoded(nmea.GGA)
	m.Decoded(nmea.RMC)
	m.Malformed()
	m.TransportError()
	m.SinkError("udp")
	m.SetSatellitesInView(11)
	m.SetFixed(true)

	if got := testutil.ToFloat64(m.sentences.WithLabelValues("GGA")); got != 2 {
		t.Fatalf("GGA=%v want 2", got)
	}
	if got := testutil.ToFloat64(m.sentences.WithLabelValues("VTG")); got != 0 {
		t.Fatalf("VTG=%v want 0", got)
	}
	if got := testutil.ToFloat64(m.malformed); got != 1 {
		t.Fatalf("malformed=%v want 1", got)
	}
	if got := testutil.ToFloat64(m.transport); got != 1 {
		t.Fatalf("transport=%v want 1", got)
	}
	if got := testutil.ToFloat64(m.sinkErrors.WithLabelValues("udp")); got != 1 {
		t.Fatalf("sink udp=%v want 1", got)
	}
	if got := testutil.ToFloat64(m.inView); got != 11 {
		t.Fatalf("inView=%v want 11", got)
	}
	if got := testutil.ToFloat64(m.fixed); got != 1 {
		t.Fatalf("fixed=%v want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Decoded(nmea.GGA)
	m.Malformed()
	m.TransportError()
	m.SinkError("x")
	m.SetSatellitesInView(3)
	m.SetFixed(false)
	if m.Registry() != nil {
		t.Fatalf("nil Metrics returned a registry")
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", rr.Code)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Decoded(nmea.GSV)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), `pmodgps_sentences_total{kind="GSV"} 1`) {
		t.Fatalf("metrics output missing GSV counter:\n%s", b)
	}
}
