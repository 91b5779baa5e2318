// Package metrics exposes Prometheus collectors for a Loom server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loom"

// Metrics holds the collectors of one server. Each server owns its own
// registry so several can run in one process (and in tests).
type Metrics struct {
	Registry *prometheus.Registry

	sessions         prometheus.Gauge
	events           *prometheus.CounterVec
	callbackFailures prometheus.Counter
	renderDuration   prometheus.Histogram
	malformedFrames  prometheus.Counter
}

// New creates and registers the Loom collectors along with the process and
// Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Current number of connected client sessions.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of client events handled.",
		}, []string{"kind", "outcome"}),
		callbackFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callback_failures_total",
			Help:      "Total number of bound callbacks that panicked.",
		}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of full view renders.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 100us to ~200ms
		}),
		malformedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_frames_total",
			Help:      "Total number of client frames that could not be decoded.",
		}),
	}
	m.Registry.MustRegister(
		m.sessions,
		m.events,
		m.callbackFailures,
		m.renderDuration,
		m.malformedFrames,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// SessionOpened records a new connection.
func (m *Metrics) SessionOpened() { m.sessions.Inc() }

// SessionClosed records a closed connection.
func (m *Metrics) SessionClosed() { m.sessions.Dec() }

// Event records one handled client event.
func (m *Metrics) Event(kind, outcome string) {
	m.events.WithLabelValues(kind, outcome).Inc()
}

// CallbackFailed records a callback that failed during dispatch.
func (m *Metrics) CallbackFailed() { m.callbackFailures.Inc() }

// MalformedFrame records a frame that could not be decoded.
func (m *Metrics) MalformedFrame() { m.malformedFrames.Inc() }

// ObserveRender records how long a render took.
func (m *Metrics) ObserveRender(d time.Duration) {
	m.renderDuration.Observe(d.Seconds())
}
