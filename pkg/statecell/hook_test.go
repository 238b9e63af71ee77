package statecell

import "testing"

func TestSetterIdentityStableAcrossRenders(t *testing.T) {
	c := New(0)
	x := mount(c)

	first := x.setter
	for i := 0; i < 5; i++ {
		x.render()
		if x.setter != first {
			t.Fatalf("setter changed identity on render %d", i+1)
		}
	}
}

func TestSetterSharedAcrossInstances(t *testing.T) {
	c := New(0)
	x := mount(c)
	y := mount(c)

	if x.setter != y.setter {
		t.Error("instances of the same cell should share one setter")
	}

	d := New(0)
	z := mount(d)
	if z.setter == x.setter {
		t.Error("instances of different cells must not share a setter")
	}
}

func TestHookRegistersOncePerMount(t *testing.T) {
	c := New(0)
	x := mount(c)

	x.render()
	x.render()
	x.render()

	if got := len(c.base.observers); got != 1 {
		t.Errorf("registry size after re-renders = %d, want 1", got)
	}
}

func TestHookRegistrationIsSynchronous(t *testing.T) {
	c := New(0)
	o := NewOwner(nil)

	// A write racing with a not-yet-finished first render must not be
	// missed: the observer is attached inside the render body, before
	// any deferred mount phase.
	o.StartRender()
	snap, _ := c.Use(o)
	if snap != 0 {
		t.Fatalf("snapshot = %d, want 0", snap)
	}
	if len(c.base.observers) != 1 {
		t.Fatal("observer not registered during synchronous render phase")
	}
	c.Set(9)
	o.EndRender()

	o.StartRender()
	snap, _ = c.Use(o)
	o.EndRender()
	if snap != 9 {
		t.Errorf("snapshot after mid-render Set = %d, want 9", snap)
	}
}

func TestSnapshotStaleUntilHostRerenders(t *testing.T) {
	c := New(0)

	// A host with deferred scheduling: invalidation only sets a flag.
	o := NewOwner(nil)
	dirty := false
	o.SetInvalidate(func() { dirty = true })

	render := func() int {
		o.StartRender()
		defer o.EndRender()
		snap, _ := c.Use(o)
		return snap
	}

	if got := render(); got != 0 {
		t.Fatalf("initial snapshot = %d, want 0", got)
	}

	c.Set(5)
	if !dirty {
		t.Fatal("expected invalidation after Set")
	}
	// The authoritative value moved; the local copy is stale until the
	// host re-renders this instance.
	if got := render(); got != 5 {
		t.Errorf("snapshot after re-render = %d, want 5", got)
	}
}

func TestTwoCellsInOneComponent(t *testing.T) {
	count := New(0)
	label := New("idle")

	o := NewOwner(nil)
	var gotCount int
	var gotLabel string
	render := func() {
		o.StartRender()
		defer o.EndRender()
		gotCount, _ = count.Use(o)
		gotLabel, _ = label.Use(o)
	}
	o.SetInvalidate(render)
	render()

	count.Set(3)
	label.Set("busy")

	if gotCount != 3 || gotLabel != "busy" {
		t.Errorf("snapshots = %d, %q, want 3, %q", gotCount, gotLabel, "busy")
	}
	if len(count.base.observers) != 1 || len(label.base.observers) != 1 {
		t.Error("each cell should hold exactly one observer for the component")
	}

	o.Dispose()
	if len(count.base.observers) != 0 || len(label.base.observers) != 0 {
		t.Error("unmount should detach from every cell the component used")
	}
}

func TestUnmountDuringFanOut(t *testing.T) {
	c := New(0)

	x := mount(c)
	var y *testInstance[int]

	// X unmounts Y as a reaction to the new value. Y sits after X in the
	// registry; the swap pulls the tail into Y's position and the outer
	// loop simply sees a shorter slice.
	xReacted := false
	c.base.attach(func() {
		if !xReacted {
			xReacted = true
			y.unmount()
		}
	})
	y = mount(c)

	c.Set(1)

	if x.snap != 1 {
		t.Errorf("X snapshot = %d, want 1", x.snap)
	}
	if y.snap != 0 {
		t.Errorf("unmounted Y snapshot = %d, want 0", y.snap)
	}
	checkPositions(t, &c.base)
}
