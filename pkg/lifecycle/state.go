package lifecycle

import "sync"

// ProjectState is a per-location snapshot of the transitions currently
// touching a project. Values returned by the manager are clones; mutating
// them has no effect on the live record.
type ProjectState struct {
	Location     string `json:"location"`
	Loading      bool   `json:"loading"`
	Saving       bool   `json:"saving"`
	Refreshing   bool   `json:"refreshing"`
	Activating   bool   `json:"activating"`
	Deactivating bool   `json:"deactivating"`
	Closing      bool   `json:"closing"`
}

// stateTracker owns the live per-location state records. Records are created
// lazily on first touch and never removed; stale records for closed
// locations are harmless.
type stateTracker struct {
	mu     sync.RWMutex
	states map[string]*ProjectState
}

func newStateTracker() *stateTracker {
	return &stateTracker{states: make(map[string]*ProjectState)}
}

// update applies fn to the live record for location, creating the record if
// needed. It is the only mutation entry point.
func (t *stateTracker) update(location string, fn func(*ProjectState)) {
	key := NormalizeLocation(location)

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[key]
	if !ok {
		st = &ProjectState{Location: location}
		t.states[key] = st
	}
	fn(st)
}

// get returns a clone of the record for location. Untouched locations yield
// an all-false state.
func (t *stateTracker) get(location string) ProjectState {
	key := NormalizeLocation(location)

	t.mu.RLock()
	defer t.mu.RUnlock()

	if st, ok := t.states[key]; ok {
		return *st
	}
	return ProjectState{Location: location}
}
