package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for statecell applications.
const defaultTracerName = "statecell"

// TracingConfig configures the OpenTelemetry instrument.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "statecell").
	TracerName string

	// Filter determines which cells to trace.
	// Return true to trace the cell, false to skip.
	// If nil, all cells are traced.
	Filter func(cell string) bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry instrument.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithCellFilter sets a filter function for cells.
func WithCellFilter(filter func(cell string) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// Tracing is a statecell.Instrument that records one span per fan-out
// pass, with the cell name and observer count as attributes.
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before attaching:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
type Tracing struct {
	config TracingConfig
}

// NewTracing creates the OpenTelemetry instrument.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return &Tracing{config: config}
}

// ObserverAttached implements statecell.Instrument. Registration is not
// traced; only fan-outs produce spans.
func (t *Tracing) ObserverAttached(cell string, total int) {}

// ObserverDetached implements statecell.Instrument.
func (t *Tracing) ObserverDetached(cell string, total int) {}

// FanOut implements statecell.Instrument. The fan-out has already
// completed when this is called, so the span is backdated to cover it.
func (t *Tracing) FanOut(cell string, observers int, d time.Duration) {
	if t.config.Filter != nil && !t.config.Filter(cell) {
		return
	}

	start := time.Now().Add(-d)
	_, span := t.config.tracer.Start(
		context.Background(),
		"statecell.fanout",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.String("statecell.cell", cell),
			attribute.Int("statecell.observers", observers),
		),
	)
	span.End(trace.WithTimestamp(start.Add(d)))
}
