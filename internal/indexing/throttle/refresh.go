package throttle

import "sync"

// forgotten is never a valid cache size, so the next call always refreshes.
const forgotten = -1

// Refresh gates re-renders of one view on its cache size: a renderer is only
// told to refresh when the size changed since the last accepted refresh.
// The remembered size starts at 0, matching an empty, already rendered view.
type Refresh struct {
	mu   sync.Mutex
	last int
}

// NewRefresh creates a refresh gate.
func NewRefresh() *Refresh {
	return &Refresh{}
}

// ShouldRefresh reports whether size differs from the size at the last
// accepted refresh, and remembers it if so.
func (r *Refresh) ShouldRefresh(size int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if size == r.last {
		return false
	}
	r.last = size
	return true
}

// Forget makes the next ShouldRefresh return true.
func (r *Refresh) Forget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = forgotten
}
