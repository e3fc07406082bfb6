// internal/realtime/registry.go
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is one live client connection as the fanout layer sees it.
// Send is best effort and must never block; a payload that cannot be
// delivered is dropped.
type Conn interface {
	Send(e Event)
	Close() error
}

// Registry maps each announced user to the single connection currently
// representing them. Last announcement wins: a reconnect overwrites the
// previous handle without closing it here (the caller decides what to
// do with the returned orphan). A reverse index keeps Disassociate O(1)
// and free of scan-order sensitivity.
//
// The registry is in-memory only. A process restart empties it and all
// clients are unaddressed until they re-announce.
type Registry struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]Conn
	byConn map[Conn]uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[uuid.UUID]Conn),
		byConn: make(map[Conn]uuid.UUID),
	}
}

// Associate records c as the connection for userID, unconditionally
// replacing any existing entry. The replaced handle, if any and not c
// itself, is returned so the caller may close it; it is otherwise left
// open but unaddressed.
func (r *Registry) Associate(userID uuid.UUID, c Conn) (orphan Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, had := r.byUser[userID]
	if had && prev != c {
		delete(r.byConn, prev)
		orphan = prev
	}
	// a handle re-announcing as a different user vacates its old slot
	if oldUser, ok := r.byConn[c]; ok && oldUser != userID {
		delete(r.byUser, oldUser)
	}
	r.byUser[userID] = c
	r.byConn[c] = userID
	return orphan
}

// Disassociate removes c's entry, but only if c is still the current
// occupant for its user. A close event from an already-replaced handle
// must not evict the newer session, so a stale handle is a no-op.
func (r *Registry) Disassociate(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.byConn[c]
	if !ok {
		return
	}
	if r.byUser[userID] == c {
		delete(r.byUser, userID)
	}
	delete(r.byConn, c)
}

// Lookup returns the connection currently representing userID.
func (r *Registry) Lookup(userID uuid.UUID) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byUser[userID]
	return c, ok
}
