package runloop

import (
	"sync/atomic"

	"github.com/statecell-dev/statecell/pkg/statecell"
)

// Mounted is one component instance mounted on a loop. The render function
// runs on the loop goroutine: once synchronously at mount, then again each
// time the instance is invalidated (coalesced, so any number of writes
// between renders produce a single re-render).
type Mounted struct {
	loop   *Loop
	owner  *statecell.Owner
	render func(*statecell.Owner)

	// pending is true while a re-render job sits in the queue.
	pending atomic.Bool
}

// Mount creates an owner on the loop, runs the first render, and wires
// invalidation to re-render scheduling. Blocks until the first render has
// completed.
func (l *Loop) Mount(render func(*statecell.Owner)) *Mounted {
	m := &Mounted{loop: l, render: render}
	l.Call(func() {
		m.owner = statecell.NewOwner(nil)
		m.owner.SetInvalidate(m.scheduleRender)
		m.renderNow()
	})
	return m
}

// Unmount disposes the instance's owner on the loop, running every mount
// cleanup exactly once. Blocks until disposal has completed.
func (m *Mounted) Unmount() {
	m.loop.Call(func() {
		m.owner.Dispose()
	})
}

// Owner returns the instance's owner. Only touch it from the loop.
func (m *Mounted) Owner() *statecell.Owner {
	return m.owner
}

// scheduleRender queues one re-render. The CAS ensures at most one render
// job is pending no matter how many invalidations arrive before it runs.
func (m *Mounted) scheduleRender() {
	if m.pending.CompareAndSwap(false, true) {
		m.loop.Dispatch(m.renderNow)
	}
}

func (m *Mounted) renderNow() {
	m.pending.Store(false)
	if m.owner.IsDisposed() {
		return
	}
	m.owner.StartRender()
	m.render(m.owner)
	m.owner.EndRender()
}
