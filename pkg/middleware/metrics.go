package middleware

import (
	"errors"
	"time"

	"github.com/nerviz/viewrouter/pkg/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Navigation outcomes used as the "outcome" label.
const (
	OutcomeMatched            = "matched"
	OutcomeUnmatched          = "unmatched"
	OutcomeCancelled          = "cancelled"
	OutcomeHistoryUnavailable = "history_unavailable"
	OutcomeError              = "error"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "viewrouter").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "viewrouter",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the router's Prometheus collectors. Create one per
// registry; registering the same names twice panics.
type Metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	activeConnections  prometheus.Gauge
	renderErrors       prometheus.Counter
	bridgeErrors       *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by mode and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"mode", "outcome"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation commit duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"mode"}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_connections",
			Help:        "Number of connected navigation bridges",
			ConstLabels: config.ConstLabels,
		}),

		renderErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total number of view render failures",
			ConstLabels: config.ConstLabels,
		}),

		bridgeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_errors_total",
			Help:        "Total bridge errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Middleware returns navigation middleware recording into m.
//
// The outcome label reflects the error returned by the rest of the chain.
// Place it first so it observes every later middleware.
func (m *Metrics) Middleware() router.Middleware {
	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
		mode := nav.Mode.String()
		start := time.Now()

		err := next()

		m.navigationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
		m.navigationsTotal.WithLabelValues(mode, outcome(nav, err)).Inc()
		return err
	})
}

// ConnectionOpened records a bridge connection.
func (m *Metrics) ConnectionOpened() {
	m.activeConnections.Inc()
}

// ConnectionClosed records a bridge disconnect.
func (m *Metrics) ConnectionClosed() {
	m.activeConnections.Dec()
}

// RecordRenderError records a failed view render.
func (m *Metrics) RecordRenderError() {
	m.renderErrors.Inc()
}

// RecordBridgeError records a bridge failure ("handshake", "read", "write").
func (m *Metrics) RecordBridgeError(errorType string) {
	m.bridgeErrors.WithLabelValues(errorType).Inc()
}

// outcome maps a navigation result to a low-cardinality label.
func outcome(nav *router.Navigation, err error) string {
	switch {
	case err == nil && nav.Resolution.Matched:
		return OutcomeMatched
	case err == nil:
		return OutcomeUnmatched
	case errors.Is(err, router.ErrNavigationCancelled):
		return OutcomeCancelled
	case errors.Is(err, router.ErrHistoryUnavailable):
		return OutcomeHistoryUnavailable
	default:
		return OutcomeError
	}
}
