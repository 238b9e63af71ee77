package statecell

// Option is a functional option for configuring cells.
// Options act on the type-erased cell base, so the same options apply to
// cells of any value type.
type Option func(*cellBase)

// WithName sets the cell's telemetry label. Without it, instruments see
// an auto-generated "cell-<id>" label.
//
// Example:
//
//	counter := statecell.New(0, statecell.WithName("counter"))
func WithName(name string) Option {
	return func(c *cellBase) {
		c.name = name
	}
}

// WithInstrument attaches an Instrument to the cell. Registry events
// (attach, detach, fan-out) are reported to it for the cell's lifetime.
//
// Example:
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	counter := statecell.New(0, statecell.WithInstrument(m))
func WithInstrument(in Instrument) Option {
	return func(c *cellBase) {
		c.instrument = in
	}
}
