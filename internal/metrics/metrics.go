// Package metrics exposes decoder counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pmodgps/internal/nmea"
)

const namespace = "pmodgps"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	reg *prometheus.Registry

	sentences  *prometheus.CounterVec
	malformed  prometheus.Counter
	transport  prometheus.Counter
	sinkErrors *prometheus.CounterVec
	inView     prometheus.Gauge
	fixed      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentences_total",
			Help:      "Sentences decoded, by kind.",
		}, []string{"kind"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_total",
			Help:      "Lines rejected as malformed or unrecognized.",
		}),
		transport: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_errors_total",
			Help:      "Errors reading from the sentence source.",
		}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed publishes, by sink.",
		}, []string{"sink"}),
		inView: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "satellites_in_view",
			Help:      "Satellites in view from the latest GSV table.",
		}),
		fixed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fix",
			Help:      "1 when the latest GGA reports a position fix.",
		}),
	}
	m.reg.MustRegister(m.sentences, m.malformed, m.transport, m.sinkErrors, m.inView, m.fixed)
	for _, k := range nmea.Kinds {
		m.sentences.WithLabelValues(k.String())
	}
	return m
}

func (m *Metrics) Decoded(k nmea.Kind) {
	if m == nil {
		return
	}
	m.sentences.WithLabelValues(k.String()).Inc()
}

func (m *Metrics) Malformed() {
	if m == nil {
		return
	}
	m.malformed.Inc()
}

func (m *Metrics) TransportError() {
	if m == nil {
		return
	}
	m.transport.Inc()
}

func (m *Metrics) SinkError(sink string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(sink).Inc()
}

func (m *Metrics) SetSatellitesInView(n int) {
	if m == nil {
		return
	}
	m.inView.Set(float64(n))
}

func (m *Metrics) SetFixed(fixed bool) {
	if m == nil {
		return
	}
	if fixed {
		m.fixed.Set(1)
	} else {
		m.fixed.Set(0)
	}
}

// Registry returns the underlying registry, or nil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry. A nil Metrics serves 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
