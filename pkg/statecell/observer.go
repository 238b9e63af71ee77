package statecell

import (
	"fmt"
	"time"
)

// observerSlot pairs an observer callback with its live index in the
// registry. Keeping the index on the slot is what makes removal O(1):
// no scan is needed to find the entry to vacate.
type observerSlot struct {
	// notify pushes the cell's current value into one component
	// instance's local slot.
	notify func()

	// position is the slot's current index in the registry.
	// Invariant: cell.observers[s.position] == s, maintained by every
	// attach and detach.
	position int
}

// cellBase provides type-erased observer management.
// It is embedded in Cell[T] so the registry logic is shared across all
// value types.
type cellBase struct {
	id   uint64
	name string

	// observers is the dense, index-addressable registry.
	observers []*observerSlot

	// instrument receives registry events. nil means uninstrumented and
	// keeps the fan-out path free of clock reads.
	instrument Instrument
}

// label returns the cell's telemetry label.
func (c *cellBase) label() string {
	if c.name != "" {
		return c.name
	}
	return fmt.Sprintf("cell-%d", c.id)
}

// attach appends an observer to the registry and records its index.
func (c *cellBase) attach(notify func()) *observerSlot {
	s := &observerSlot{
		notify:   notify,
		position: len(c.observers),
	}
	c.observers = append(c.observers, s)

	if c.instrument != nil {
		c.instrument.ObserverAttached(c.label(), len(c.observers))
	}
	return s
}

// detach removes an observer in O(1) by swap-with-last: the last slot
// moves into the vacated position, its own position is fixed up, and the
// registry shrinks by one. Ordering across distinct instances is not
// preserved, which is fine: fan-out order carries no correctness meaning.
func (c *cellBase) detach(s *observerSlot) {
	last := len(c.observers) - 1
	if s.position != last {
		moved := c.observers[last]
		c.observers[s.position] = moved
		moved.position = s.position
	}
	c.observers[last] = nil
	c.observers = c.observers[:last]

	if c.instrument != nil {
		c.instrument.ObserverDetached(c.label(), len(c.observers))
	}
}

// fanOut invokes every registered observer in ascending index order over
// the live registry. A nested set from inside an observer completes its
// own fan-out before the outer loop resumes, and the outer loop then
// iterates whatever the nested call left in the slice. This mirrors the
// registry's mutation policy rather than inventing snapshot isolation.
func (c *cellBase) fanOut() {
	if c.instrument == nil {
		for i := 0; i < len(c.observers); i++ {
			c.observers[i].notify()
		}
		return
	}

	start := time.Now()
	for i := 0; i < len(c.observers); i++ {
		c.observers[i].notify()
	}
	c.instrument.FanOut(c.label(), len(c.observers), time.Since(start))
}
