// Package statecell provides a minimal publish/subscribe primitive for
// sharing one piece of state between many independent UI component
// instances, without a central store or context tree.
//
// # Core Types
//
// Cell[T] owns a single value and a registry of observers:
//
//	counter := statecell.New(0)
//	value := counter.Get()  // Read (never subscribes)
//	counter.Set(5)          // Write (fans out to every observer)
//	counter.Update(func(n int) int { return n + 1 })
//
// Components consume a cell through the hook, which registers an observer
// for the lifetime of the component instance:
//
//	func Counter(o *statecell.Owner) string {
//	    n, set := counter.Use(o)
//	    _ = set // stable across re-renders, safe to capture anywhere
//	    return fmt.Sprintf("count: %d", n)
//	}
//
// # Threading Model
//
// A Cell is loop-confined: construction, Set, Update, Get, and all observer
// registration and removal must run on the single goroutine of the host
// scheduler (see package runloop). There is no internal locking. To mutate
// a cell from a background goroutine, dispatch onto the loop:
//
//	go func() {
//	    result := fetch()
//	    loop.Dispatch(func() { cell.Set(result) })
//	}()
//
// A call to Set completes its full fan-out before returning. If an observer
// reacts by calling Set again, the nested call runs its own full fan-out
// first; the outer loop then continues over the live registry by index.
package statecell
