package statecell

import (
	"math/rand"
	"testing"
)

// checkPositions verifies that every slot's recorded position matches its
// actual index and that no slot appears twice.
func checkPositions(t *testing.T, c *cellBase) {
	t.Helper()
	seen := make(map[*observerSlot]bool, len(c.observers))
	for i, s := range c.observers {
		if s == nil {
			t.Fatalf("nil slot at index %d", i)
		}
		if s.position != i {
			t.Fatalf("slot at index %d has position %d", i, s.position)
		}
		if seen[s] {
			t.Fatalf("slot registered twice at index %d", i)
		}
		seen[s] = true
	}
}

func TestDetachSwapsLastIntoVacatedPosition(t *testing.T) {
	c := New(0)

	a := c.base.attach(func() {})
	b := c.base.attach(func() {})
	z := c.base.attach(func() {})

	c.base.detach(b)

	if len(c.base.observers) != 2 {
		t.Fatalf("registry size = %d, want 2", len(c.base.observers))
	}
	if c.base.observers[0] != a || c.base.observers[1] != z {
		t.Error("expected registry [a, z] after removing middle slot")
	}
	if z.position != 1 {
		t.Errorf("moved slot position = %d, want 1", z.position)
	}
	checkPositions(t, &c.base)
}

func TestDetachLastShrinksOnly(t *testing.T) {
	c := New(0)

	a := c.base.attach(func() {})
	b := c.base.attach(func() {})

	c.base.detach(b)

	if len(c.base.observers) != 1 || c.base.observers[0] != a {
		t.Error("expected registry [a] after removing tail slot")
	}
	if a.position != 0 {
		t.Errorf("remaining slot position = %d, want 0", a.position)
	}

	c.base.detach(a)
	if len(c.base.observers) != 0 {
		t.Errorf("registry size = %d, want 0", len(c.base.observers))
	}
}

func TestPositionInvariantUnderChurn(t *testing.T) {
	c := New(0)
	rng := rand.New(rand.NewSource(1))

	var live []*observerSlot
	for op := 0; op < 2000; op++ {
		if len(live) == 0 || rng.Intn(2) == 0 {
			live = append(live, c.base.attach(func() {}))
		} else {
			i := rng.Intn(len(live))
			c.base.detach(live[i])
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		}

		if len(c.base.observers) != len(live) {
			t.Fatalf("op %d: registry size = %d, want %d", op, len(c.base.observers), len(live))
		}
		checkPositions(t, &c.base)
	}
}

func TestUnmountedObserverNeverNotified(t *testing.T) {
	c := New(0)

	calls := 0
	slot := c.base.attach(func() { calls++ })
	keeper := 0
	c.base.attach(func() { keeper++ })

	c.Set(1)
	if calls != 1 || keeper != 1 {
		t.Fatalf("calls = %d, %d, want 1, 1", calls, keeper)
	}

	c.base.detach(slot)

	c.Set(2)
	c.Set(3)
	if calls != 1 {
		t.Errorf("detached observer calls = %d, want 1", calls)
	}
	if keeper != 3 {
		t.Errorf("live observer calls = %d, want 3", keeper)
	}
}

func TestReentrantSetContinuesOverLiveRegistry(t *testing.T) {
	c := New(0)

	// First observer escalates value 1 to 2, once.
	escalated := false
	c.base.attach(func() {
		if c.Get() == 1 && !escalated {
			escalated = true
			c.Set(2)
		}
	})

	var seen []int
	c.base.attach(func() { seen = append(seen, c.Get()) })

	c.Set(1)

	// Nested fan-out for 2 runs to completion first, then the outer loop
	// resumes at index 1 and delivers the (now current) value again.
	want := []int{2, 2}
	if len(seen) != len(want) {
		t.Fatalf("second observer saw %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("second observer saw %v, want %v", seen, want)
		}
	}
	if c.Get() != 2 {
		t.Errorf("final value = %d, want 2", c.Get())
	}
}

func TestObserverAttachedDuringFanOutIsReached(t *testing.T) {
	c := New(0)

	lateCalls := 0
	var once bool
	c.base.attach(func() {
		if !once {
			once = true
			c.base.attach(func() { lateCalls++ })
		}
	})

	// The outer loop iterates the live slice, so a slot appended during
	// the pass is visited before the pass ends.
	c.Set(1)
	if lateCalls != 1 {
		t.Errorf("late observer calls = %d, want 1", lateCalls)
	}
}
