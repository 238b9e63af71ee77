package statecell

// Owner represents one mounted component instance's scope. It implements
// Lifecycle: hooks called during the instance's render body store their
// per-mount state in the owner's slots, and cleanups registered at mount
// run exactly once when the owner is disposed.
//
// Owners form a hierarchy: a child component's Owner is a child of its
// parent's. Disposing an Owner disposes its children first, in reverse
// creation order, then runs its own cleanups in reverse order.
//
// Like the cells it observes, an Owner is loop-confined: all methods must
// run on the host scheduler's goroutine.
type Owner struct {
	id uint64

	// parent is the parent Owner in the hierarchy.
	// nil for a root Owner.
	parent *Owner

	// children are child Owners (sub-components).
	children []*Owner

	// cleanups are functions registered via OnCleanup or retained from
	// OnMountOnce setups. Run in reverse order at Dispose.
	cleanups []Cleanup

	// slots store per-hook state so hooks keep stable identity across
	// renders. Hooks consume slots in call order; StartRender resets the
	// cursor, so the hook order must not change between renders.
	slots   []any
	slotIdx int

	// invalidate is the host scheduler's re-render trigger.
	// nil until the scheduler mounts the owner.
	invalidate func()

	disposed bool
}

// NewOwner creates a new Owner with the given parent.
// The new Owner is registered as a child of the parent.
// If parent is nil, creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.children = append(parent.children, o)
	}

	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil if this is a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed
}

// SetInvalidate installs the host scheduler's re-render trigger.
// Writing a local slot from outside the render path calls it.
func (o *Owner) SetInvalidate(fn func()) {
	o.invalidate = fn
}

// Invalidate asks the host scheduler to re-render this instance.
// No-op when the owner is disposed or no scheduler is attached.
func (o *Owner) Invalidate() {
	if o.disposed || o.invalidate == nil {
		return
	}
	o.invalidate()
}

// StartRender is called at the beginning of a render of this instance.
// It resets the slot cursor so hooks reclaim their slots in call order.
func (o *Owner) StartRender() {
	o.slotIdx = 0
}

// EndRender is called at the end of a render of this instance.
func (o *Owner) EndRender() {}

// useSlot returns the value stored at the current hook position, or nil
// on the first render, and advances the cursor. A nil return means the
// caller should create its state and store it with setSlot.
func (o *Owner) useSlot() any {
	idx := o.slotIdx
	o.slotIdx++

	if idx < len(o.slots) {
		return o.slots[idx]
	}
	return nil
}

// setSlot stores a value in the current hook slot.
// Must be called after useSlot returned nil (first render).
func (o *Owner) setSlot(value any) {
	o.slots = append(o.slots, value)
}

// localSlot is the component-local storage handed out by LocalSlot.
// Writes outside the render path invalidate the owner.
type localSlot struct {
	owner *Owner
	value any
}

func (s *localSlot) read() any { return s.value }

func (s *localSlot) write(v any) {
	s.value = v
	s.owner.Invalidate()
}

// LocalSlot implements Lifecycle. The pair it returns is stable for the
// lifetime of the mount; initial is only consulted on the first render.
func (o *Owner) LocalSlot(initial any) (func() any, func(any)) {
	if stored := o.useSlot(); stored != nil {
		s := stored.(*localSlot)
		return s.read, s.write
	}

	s := &localSlot{owner: o, value: initial}
	o.setSlot(s)
	return s.read, s.write
}

// mounted is the slot marker recording that an OnMountOnce call site
// already ran its setup.
type mounted struct{}

// OnMountOnce implements Lifecycle. The setup runs synchronously, inside
// the first render pass, so registrations it performs cannot miss a write
// that lands between first read and the end of the render. The returned
// Cleanup is deferred to Dispose.
func (o *Owner) OnMountOnce(setup func() Cleanup) {
	if o.useSlot() != nil {
		return
	}
	o.setSlot(mounted{})

	if cleanup := setup(); cleanup != nil {
		o.OnCleanup(cleanup)
	}
}

// OnCleanup registers a function to run when this Owner is disposed.
// If the Owner is already disposed, the function runs immediately.
func (o *Owner) OnCleanup(fn Cleanup) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// Dispose disposes this Owner: children first in reverse creation order,
// then this Owner's cleanups in reverse registration order. Disposing
// twice is a no-op, which is what guarantees each mount's cleanup runs
// exactly once.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	o.slots = nil
	o.invalidate = nil
}

// removeChild removes a child Owner from this Owner's children.
func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}
