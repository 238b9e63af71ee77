package telemetry

import (
	"time"

	"github.com/statecell-dev/statecell/pkg/statecell"
)

// multi fans instrument events out to several instruments.
type multi []statecell.Instrument

// Multi combines instruments so a cell can report to all of them, e.g.
// Prometheus and OpenTelemetry at once:
//
//	statecell.WithInstrument(telemetry.Multi(
//	    telemetry.NewMetrics(),
//	    telemetry.NewTracing(),
//	))
func Multi(ins ...statecell.Instrument) statecell.Instrument {
	return multi(ins)
}

func (m multi) ObserverAttached(cell string, total int) {
	for _, in := range m {
		in.ObserverAttached(cell, total)
	}
}

func (m multi) ObserverDetached(cell string, total int) {
	for _, in := range m {
		in.ObserverDetached(cell, total)
	}
}

func (m multi) FanOut(cell string, observers int, d time.Duration) {
	for _, in := range m {
		in.FanOut(cell, observers, d)
	}
}
