// Package telemetry provides statecell.Instrument implementations:
// Prometheus metrics and OpenTelemetry tracing for cell registries.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus instrument.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "statecell").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for fan-out duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus instrument.
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

// WithBuckets sets the fan-out duration histogram buckets.
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
		Namespace: "statecell",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a statecell.Instrument that exports registry activity as
// Prometheus metrics, labeled by cell name:
//   - statecell_observers: Gauge of currently registered observers
//   - statecell_fanouts_total: Counter of completed fan-out passes
//   - statecell_fanout_duration_seconds: Histogram of fan-out duration
//   - statecell_fanout_size: Histogram of observers reached per fan-out
//
// Attach it per cell:
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	counter := statecell.New(0,
//	    statecell.WithName("counter"),
//	    statecell.WithInstrument(m),
//	)
//
// Expose the metrics endpoint with promhttp.Handler().
type Metrics struct {
	observers      *prometheus.GaugeVec
	fanouts        *prometheus.CounterVec
	fanoutDuration *prometheus.HistogramVec
	fanoutSize     *prometheus.HistogramVec
}

// NewMetrics creates and registers the Prometheus instrument.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		observers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "observers",
			Help:        "Number of currently registered observers",
			ConstLabels: config.ConstLabels,
		}, []string{"cell"}),

		fanouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fanouts_total",
			Help:        "Total number of completed fan-out passes",
			ConstLabels: config.ConstLabels,
		}, []string{"cell"}),

		fanoutDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fanout_duration_seconds",
			Help:        "Fan-out duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"cell"}),

		fanoutSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fanout_size",
			Help:        "Observers reached per fan-out",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}, []string{"cell"}),
	}
}

// ObserverAttached implements statecell.Instrument.
func (m *Metrics) ObserverAttached(cell string, total int) {
	m.observers.WithLabelValues(cell).Set(float64(total))
}

// ObserverDetached implements statecell.Instrument.
func (m *Metrics) ObserverDetached(cell string, total int) {
	m.observers.WithLabelValues(cell).Set(float64(total))
}

// FanOut implements statecell.Instrument.
func (m *Metrics) FanOut(cell string, observers int, d time.Duration) {
	m.fanouts.WithLabelValues(cell).Inc()
	m.fanoutDuration.WithLabelValues(cell).Observe(d.Seconds())
	m.fanoutSize.WithLabelValues(cell).Observe(float64(observers))
}
