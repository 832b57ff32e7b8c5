package mode

import "sync"

// Router guards the single active OperatingMode. Configure fully replaces
// the mode (no merging); Current reports false before the first Configure so
// callers can fail fast instead of proceeding with partial state.
//
// Every Configure bumps a generation counter. Work started under an earlier
// generation can compare generations afterwards and discard its result
// rather than mixing semantics across a reconfiguration.
type Router struct {
	mu   sync.Mutex
	mode OperatingMode
	set  bool
	gen  uint64
}

func NewRouter() *Router {
	return &Router{}
}

// Configure atomically replaces the active mode and returns the new
// generation.
func (r *Router) Configure(m OperatingMode) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = m
	r.set = true
	r.gen++
	return r.gen
}

// Current returns the active mode, its generation, and whether a mode has
// been configured at all.
func (r *Router) Current() (OperatingMode, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode, r.gen, r.set
}
