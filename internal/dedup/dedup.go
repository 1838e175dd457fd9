// Package dedup guarantees at-most-once execution per signal id
package dedup

import "sync"

// Registry is a process-wide set of previously accepted signal ids. It does
// not persist across restarts; replay protection after a restart is traded
// for availability.
type Registry struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRegistry creates an empty dedup registry
func NewRegistry() *Registry {
	return &Registry{
		seen: make(map[string]struct{}),
	}
}

// Admit returns true and records the id exactly once per distinct id, false
// for any id already recorded. Check-and-insert is a single critical section:
// two concurrent signals with the same id can never both be admitted.
//
// An empty id is always admitted. Signals without an id opt out of
// idempotency protection rather than colliding on one shared key.
func (r *Registry) Admit(signalID string) bool {
	if signalID == "" {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.seen[signalID]; dup {
		return false
	}
	r.seen[signalID] = struct{}{}
	return true
}

// Len returns the number of recorded ids
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
