package volume

import (
	"sync"
	"time"

	"github.com/JBibu/zerobyte/pkg/types"
)

// StateInfo is a snapshot of a volume's registry entry.
type StateInfo struct {
	State     types.MountState `json:"state"`
	LastError string           `json:"last_error,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Registry is the authoritative in-memory record of every volume's mount
// state. Entries are created lazily on first use and guarded by a per-volume
// mutex so operations on unrelated volumes never block each other. Only the
// orchestrator mutates entries.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	opLock sync.Mutex // held for the full duration of one operation

	mu        sync.Mutex // guards the fields below
	state     types.MountState
	lastError string
	updatedAt time.Time
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

func (r *Registry) entry(name string) *registryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		e = &registryEntry{state: types.StateUnmounted, updatedAt: time.Now()}
		r.entries[name] = e
	}
	return e
}

// State returns the current snapshot for a volume.
func (r *Registry) State(name string) StateInfo {
	return r.entry(name).snapshot()
}

// Evict removes a volume's entry, for use when the volume is deleted.
func (r *Registry) Evict(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

func (e *registryEntry) snapshot() StateInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return StateInfo{State: e.state, LastError: e.lastError, UpdatedAt: e.updatedAt}
}

func (e *registryEntry) set(state types.MountState, lastError string) {
	e.mu.Lock()
	e.state = state
	e.lastError = lastError
	e.updatedAt = time.Now()
	e.mu.Unlock()
}

func (e *registryEntry) current() types.MountState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
