package statecell

// Cleanup is a function that releases resources acquired during mount.
// It is called exactly once, when the component instance unmounts.
type Cleanup func()

// Lifecycle is the component runtime collaborator the hook is written
// against. Any reactive UI framework that offers component-local storage
// and a mount/unmount boundary can implement it; Owner is the
// implementation shipped with this module.
type Lifecycle interface {
	// LocalSlot returns a read/write pair backed by component-local
	// storage. On the first render the slot is initialized from initial;
	// subsequent renders return the same pair and ignore initial.
	// Writing the slot from outside the render path invalidates the
	// component so the host scheduler re-renders it.
	LocalSlot(initial any) (read func() any, write func(any))

	// OnMountOnce invokes setup during the synchronous portion of the
	// first render and retains the returned Cleanup to run exactly once
	// at unmount. Subsequent renders are no-ops.
	OnMountOnce(setup func() Cleanup)
}
