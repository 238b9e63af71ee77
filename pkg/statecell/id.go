package statecell

import "sync/atomic"

// idCounter issues process-wide IDs for cells and owners.
var idCounter atomic.Uint64

// nextID returns a fresh ID. IDs start at 1 and are never reused, so a
// zero ID never identifies a live cell or owner.
func nextID() uint64 {
	return idCounter.Add(1)
}
