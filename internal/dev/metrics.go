package dev

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the regeneration metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "autoroute").
	Namespace string

	// Buckets are the histogram buckets for regeneration duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Metrics holds the Prometheus collectors of the regeneration loop.
type Metrics struct {
	eventsTotal        *prometheus.CounterVec
	regenerationsTotal *prometheus.CounterVec
	regenerationTime   *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	writesTotal        *prometheus.CounterVec
	routes             prometheus.Gauge
	clients            prometheus.Gauge
	active             prometheus.Gauge
}

// NewMetrics registers the collectors.
//
// Metrics collected:
//   - autoroute_events_total: filesystem events by op and outcome
//   - autoroute_regenerations_total: synthesizer runs by kind
//   - autoroute_regeneration_duration_seconds: synthesizer run time by kind
//   - autoroute_errors_total: failed runs by error code
//   - autoroute_writes_total: generated files written by kind
//   - autoroute_routes: entries in the current route table
//   - autoroute_ws_clients: connected notification clients
//   - autoroute_active: 1 once the initial scan is complete
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "autoroute"
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "events_total",
			Help:      "Filesystem events received by the regeneration controller",
		}, []string{"op", "outcome"}),

		regenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "regenerations_total",
			Help:      "Synthesizer runs",
		}, []string{"kind"}),

		regenerationTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "regeneration_duration_seconds",
			Help:      "Synthesizer run time in seconds",
			Buckets:   config.Buckets,
		}, []string{"kind"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "errors_total",
			Help:      "Failed synthesizer runs by error code",
		}, []string{"code"}),

		writesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "writes_total",
			Help:      "Generated files written",
		}, []string{"kind"}),

		routes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "routes",
			Help:      "Entries in the current route table",
		}),

		clients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "ws_clients",
			Help:      "Connected notification clients",
		}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "active",
			Help:      "1 once the initial scan is complete",
		}),
	}
}

// The methods below accept a nil receiver so that metrics stay optional.

func (m *Metrics) event(op Op, outcome string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(op.String(), outcome).Inc()
}

func (m *Metrics) regeneration(kind string, d time.Duration, written int) {
	if m == nil {
		return
	}
	m.regenerationsTotal.WithLabelValues(kind).Inc()
	m.regenerationTime.WithLabelValues(kind).Observe(d.Seconds())
	if written > 0 {
		m.writesTotal.WithLabelValues(kind).Add(float64(written))
	}
}

func (m *Metrics) failure(code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.errorsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) setRoutes(n int) {
	if m == nil {
		return
	}
	m.routes.Set(float64(n))
}

// SetClients records the number of connected notification clients.
func (m *Metrics) SetClients(n int) {
	if m == nil {
		return
	}
	m.clients.Set(float64(n))
}

func (m *Metrics) setActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.active.Set(1)
	} else {
		m.active.Set(0)
	}
}
