package lifecycle

import "sync"

// registry is the ordered location -> project mapping. Keys are normalized
// (lower-cased) locations; insertion order is preserved for iteration.
//
// The registry carries its own lock because Refresh and Close mutate it
// without holding the manager's load lock. The two high-level locks cover
// only the Load and SetActive paths; the internal guard here keeps
// individual mutations safe without widening them.
type registry struct {
	mu       sync.RWMutex
	projects map[string]*Project
	order    []string
}

func newRegistry() *registry {
	return &registry{projects: make(map[string]*Project)}
}

// get returns the project registered at location, or nil.
func (r *registry) get(location string) *Project {
	key := NormalizeLocation(location)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.projects[key]
}

// add inserts p, replacing any project already registered at its location
// without disturbing that location's position in the insertion order.
func (r *registry) add(p *Project) {
	key := NormalizeLocation(p.Location)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projects[key]; !exists {
		r.order = append(r.order, key)
	}
	r.projects[key] = p
}

// remove deletes the entry for location, if any.
func (r *registry) remove(location string) {
	key := NormalizeLocation(location)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projects[key]; !exists {
		return
	}
	delete(r.projects, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// list returns a snapshot of the registered projects in insertion order.
func (r *registry) list() []*Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Project, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.projects[key])
	}
	return out
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.projects)
}
