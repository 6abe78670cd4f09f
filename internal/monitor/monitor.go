// Package monitor collects Prometheus metrics for the dashboard.
package monitor

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor wraps a private registry so tests can build as many
// instances as they like without collisions.
type Monitor struct {
	registry *prometheus.Registry

	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	tableRows       prometheus.Gauge
	lastRefresh     prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	renderErrors prometheus.Counter
}

// Config names the metric namespace.
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig returns the default namespace.
func DefaultConfig() Config {
	return Config{Namespace: "tickerscope", Subsystem: "dashboard"}
}

// New creates a Monitor with its own registry.
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Monitor{
		registry: reg,

		refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "refreshes_total",
				Help:      "Refresh cycles by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		refreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "refresh_duration_seconds",
			Help:      "End-to-end refresh cycle duration",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		tableRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "table_rows",
			Help:      "Rows in the currently displayed price table",
		}),
		lastRefresh: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		}),

		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_latency_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		renderErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "render_errors_total",
			Help:      "Chart render failures recovered inline",
		}),
	}
}

// RecordRefresh counts one refresh cycle and tracks duration and
// resulting table size.
func (m *Monitor) RecordRefresh(trigger, outcome string, seconds float64, rows int) {
	m.refreshes.WithLabelValues(trigger, outcome).Inc()
	m.refreshDuration.Observe(seconds)
	m.tableRows.Set(float64(rows))
	if outcome == "ok" {
		m.lastRefresh.Set(float64(time.Now().Unix()))
	}
}

// RecordHTTP counts one served request.
func (m *Monitor) RecordHTTP(route string, status int, seconds float64) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route).Observe(seconds)
}

// RecordRenderError counts a recovered chart render failure.
func (m *Monitor) RecordRenderError() {
	m.renderErrors.Inc()
}

// Handler returns the HTTP handler exposing this monitor's registry.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}
