package statecell

// Cell is the single source of truth for one piece of shared state.
// It owns the current value and the registry of observers; the three ways
// in (Use, Set/Update, Get) all operate on the same private state, and
// independent cells created by separate New calls are fully isolated.
type Cell[T any] struct {
	base cellBase

	// value is the authoritative current state. Any component's local
	// copy is a snapshot that goes stale the instant value changes and
	// is fresh again only after that component's observer has fired.
	value T

	// equal, when set via WithEquals, suppresses fan-out for writes that
	// do not change the value. nil preserves the default contract:
	// every Set fans out.
	equal func(T, T) bool

	// setter is the one handle ever handed out by Use. Allocating it
	// here makes the setter reference-identical across all renders of
	// all instances for the cell's lifetime.
	setter *Setter[T]
}

// New creates a cell holding the given initial value.
func New[T any](initial T, opts ...Option) *Cell[T] {
	c := &Cell[T]{
		base: cellBase{
			id: nextID(),
		},
		value: initial,
	}
	for _, opt := range opts {
		opt(&c.base)
	}
	c.setter = &Setter[T]{cell: c}
	return c
}

// NewLazy creates a cell whose initial value is computed by init.
// init is invoked exactly once, here, and never again — regardless of how
// many instances later mount through Use.
func NewLazy[T any](init func() T, opts ...Option) *Cell[T] {
	return New(init(), opts...)
}

// Get returns the current value synchronously. It never subscribes the
// caller: a Get inside a render body yields a value that will not trigger
// a re-render on later changes. Intended for non-render contexts such as
// timers, event handlers, and other modules.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set replaces the current value and notifies every registered observer,
// in ascending registry order, before returning. Callable identically
// from inside a render and from arbitrary outside code on the loop.
func (c *Cell[T]) Set(value T) {
	if c.equal != nil && c.equal(c.value, value) {
		return
	}
	c.value = value
	c.base.fanOut()
}

// Update replaces the current value with fn(current) and fans out.
// This is the updater form for writes that depend on prior state.
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.value))
}

// Use is the hook: call it once per render of a consuming component
// instance. It returns the instance's local snapshot of the value and the
// cell's stable setter.
//
// On the first render after mount it initializes the instance's local
// slot from the current value and synchronously registers an observer
// that refreshes the slot on every fan-out; the registration is undone
// exactly once when the instance unmounts. Subsequent renders return the
// slot's current value without touching the registry.
func (c *Cell[T]) Use(lc Lifecycle) (T, *Setter[T]) {
	read, write := lc.LocalSlot(c.value)

	lc.OnMountOnce(func() Cleanup {
		slot := c.base.attach(func() {
			write(c.value)
		})
		return func() {
			c.base.detach(slot)
		}
	})

	// Comma-ok: when T is an interface type the slot may legitimately hold
	// nil, and nil's zero value for T is exactly nil. For concrete T the
	// stored value is never a nil interface, so the ok branch always hits.
	v, _ := read().(T)
	return v, c.setter
}

// WithEquals returns the cell configured with an equality function.
// When set, writes that compare equal to the current value skip the
// fan-out. Off by default: without it every Set notifies, even when the
// value is unchanged.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

// ID returns the unique identifier for this cell.
func (c *Cell[T]) ID() uint64 {
	return c.base.id
}

// Name returns the cell's telemetry label.
func (c *Cell[T]) Name() string {
	return c.base.label()
}

// Setter mutates a cell's value. The two methods are the two forms of the
// setter contract, split into explicit entry points: Set takes the next
// value literally, Update maps the previous value to the next one. A
// cell's Setter never changes identity, so it is safe to capture in
// closures, timers, and other modules.
type Setter[T any] struct {
	cell *Cell[T]
}

// Set replaces the value with v and fans out.
func (s *Setter[T]) Set(v T) {
	s.cell.Set(v)
}

// Update replaces the value with fn(previous) and fans out.
func (s *Setter[T]) Update(fn func(T) T) {
	s.cell.Update(fn)
}
