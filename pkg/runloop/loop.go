// Package runloop provides the single-threaded cooperative scheduler that
// statecell components run on. One goroutine owns the cells and owners;
// everything else talks to them by dispatching jobs onto the loop.
package runloop

import (
	"context"
	"runtime"
	"sync"
)

// Loop is a single-goroutine job queue. Jobs run in dispatch order, one at
// a time, to completion; that goroutine is the confinement domain for every
// cell and owner used from it.
type Loop struct {
	mu      sync.Mutex
	jobs    []func()
	stopped bool

	// wake signals the run goroutine that jobs (or a stop) are pending.
	wake chan struct{}

	// done is closed when the run goroutine has drained and exited.
	done chan struct{}

	// gid is the run goroutine's ID, used to detect re-entrant Call.
	gid uint64
}

// New creates a loop and starts its goroutine.
func New() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	l.mu.Lock()
	l.gid = goroutineID()
	l.mu.Unlock()

	for {
		l.mu.Lock()
		jobs := l.jobs
		l.jobs = nil
		stopped := l.stopped
		l.mu.Unlock()

		for _, job := range jobs {
			job()
		}

		if stopped && len(jobs) == 0 {
			close(l.done)
			return
		}
		if stopped {
			// Drain jobs enqueued before the stop flag was observed.
			continue
		}

		<-l.wake
	}
}

// Dispatch enqueues fn to run on the loop goroutine. It never blocks and
// is safe to call from any goroutine, including from a job already running
// on the loop. Jobs dispatched after Stop are dropped.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.jobs = append(l.jobs, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop goroutine and waits for it to finish. When the
// caller is already on the loop goroutine, fn runs inline. After Stop,
// Call returns without running fn.
func (l *Loop) Call(fn func()) {
	l.mu.Lock()
	onLoop := l.gid != 0 && l.gid == goroutineID()
	stopped := l.stopped
	l.mu.Unlock()

	if onLoop {
		fn()
		return
	}
	if stopped {
		return
	}

	ran := make(chan struct{})
	l.Dispatch(func() {
		fn()
		close(ran)
	})

	select {
	case <-ran:
	case <-l.done:
	}
}

// Stop drains the queue and stops the loop goroutine. Jobs dispatched
// after Stop are dropped. Returns ctx.Err() if the context expires before
// the drain completes.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// goroutineID returns a unique identifier for the current goroutine by
// parsing the runtime stack header ("goroutine <id> ..."). An
// implementation detail of re-entrant Call; not exposed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
