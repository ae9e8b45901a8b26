package capability

import (
	"sync"
)

// State is the lifecycle phase of one external capability
type State int

const (
	StateInitializing State = iota
	StateReady
	StateFailed
)

// String returns the wire name of the state
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Tracker follows one capability through its two-phase lifecycle
// (initializing then ready). Health checks read it to distinguish a
// warming-up process from a ready one.
type Tracker struct {
	name string

	mu     sync.RWMutex
	state  State
	detail string
}

// NewTracker creates a tracker in the initializing state
func NewTracker(name string) *Tracker {
	return &Tracker{name: name}
}

// Name returns the capability name
func (t *Tracker) Name() string {
	return t.name
}

// MarkReady transitions the capability to ready
func (t *Tracker) MarkReady() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateReady
	t.detail = ""
}

// MarkFailed records a permanent initialization failure
func (t *Tracker) MarkFailed(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateFailed
	if err != nil {
		t.detail = err.Error()
	}
}

// State returns the current lifecycle state
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Detail returns the failure detail, empty unless failed
func (t *Tracker) Detail() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.detail
}

// Registry collects the trackers of every configured capability
type Registry struct {
	mu       sync.RWMutex
	trackers []*Tracker
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a tracker to the registry
func (r *Registry) Register(t *Tracker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackers = append(r.trackers, t)
}

// Ready reports whether every registered capability is ready
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.trackers {
		if t.State() != StateReady {
			return false
		}
	}
	return true
}

// Snapshot returns the per-capability state names for health reporting
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.trackers))
	for _, t := range r.trackers {
		state := t.State().String()
		if detail := t.Detail(); detail != "" {
			state += ": " + detail
		}
		out[t.name] = state
	}
	return out
}
