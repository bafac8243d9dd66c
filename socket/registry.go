package socket

import "sync"

// ConnEntry is what the coordinator remembers about one live
// connection: who it is and which deck it joined. Identity is
// resolved once at connect and cached here for the connection's
// lifetime; the role is deliberately absent and re-read from the
// membership row on every mutating call.
type ConnEntry struct {
	UserID   string
	Nickname string
	Slug     string
}

// ConnRegistry maps connection ids to their entries. Entries live
// exactly as long as the connection; nothing here survives a process
// restart.
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[string]ConnEntry
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{conns: make(map[string]ConnEntry)}
}

func (r *ConnRegistry) Register(connID string, entry ConnEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = entry
}

// Unregister removes and returns the entry for connID. The boolean is
// false when the connection was never registered.
func (r *ConnRegistry) Unregister(connID string) (ConnEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
	}
	return entry, ok
}

func (r *ConnRegistry) Get(connID string) (ConnEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[connID]
	return entry, ok
}

// Snapshot returns a copy safe to iterate while connections come and
// go.
func (r *ConnRegistry) Snapshot() map[string]ConnEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ConnEntry, len(r.conns))
	for k, v := range r.conns {
		out[k] = v
	}
	return out
}
