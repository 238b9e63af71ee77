package statecell

import "time"

// Instrument receives registry lifecycle events from a cell. The telemetry
// package ships Prometheus and OpenTelemetry implementations; attach one
// with WithInstrument. Calls arrive on the cell's loop goroutine, so
// implementations must be fast and must not call back into the cell.
type Instrument interface {
	// ObserverAttached reports a new observer registration.
	// total is the registry size after the append.
	ObserverAttached(cell string, total int)

	// ObserverDetached reports an observer removal.
	// total is the registry size after the shrink.
	ObserverDetached(cell string, total int)

	// FanOut reports one completed notification pass.
	// observers is the registry size when the pass finished; nested
	// fan-outs triggered by re-entrant sets report separately.
	FanOut(cell string, observers int, d time.Duration)
}
