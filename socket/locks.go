package socket

import "sync"

// LockManager tracks advisory edit locks, element id -> owning user
// id. Locks are coordination hints for the UI (no two clients drag
// the same element at once), not storage-level guarantees: a restart
// simply clears them. At most one owner per element is enforced
// structurally by the map.
type LockManager struct {
	mu     sync.RWMutex
	owners map[string]string
}

func NewLockManager() *LockManager {
	return &LockManager{owners: make(map[string]string)}
}

// Acquire claims elementID for userID. It fails whenever the element
// already has an owner, including when that owner is userID itself;
// re-acquisition is not idempotent.
func (l *LockManager) Acquire(elementID, userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.owners[elementID]; held {
		return false
	}
	l.owners[elementID] = userID
	return true
}

// Release drops the lock unconditionally. Ownership is not checked
// here; callers that care (element mutation) consult Owner first.
func (l *LockManager) Release(elementID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.owners, elementID)
}

// ReleaseAll drops every lock held by userID. Called on disconnect.
func (l *LockManager) ReleaseAll(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for elementID, owner := range l.owners {
		if owner == userID {
			delete(l.owners, elementID)
		}
	}
}

func (l *LockManager) Owner(elementID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	owner, ok := l.owners[elementID]
	return owner, ok
}

// Snapshot returns a copy of the full lock map, sent to joining
// clients and broadcast after every change.
func (l *LockManager) Snapshot() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.owners))
	for k, v := range l.owners {
		out[k] = v
	}
	return out
}
