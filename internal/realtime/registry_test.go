package realtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

type fakeConn struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (f *fakeConn) Send(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestRegistryLastAnnouncementWins(t *testing.T) {
	r := NewRegistry()
	u := uuid.New()
	h1, h2 := &fakeConn{}, &fakeConn{}

	if orphan := r.Associate(u, h1); orphan != nil {
		t.Fatalf("first associate returned orphan %v", orphan)
	}
	orphan := r.Associate(u, h2)
	if orphan != Conn(h1) {
		t.Fatalf("second associate: orphan = %v, want h1", orphan)
	}
	got, ok := r.Lookup(u)
	if !ok || got != Conn(h2) {
		t.Fatalf("Lookup after reconnect = %v, %v; want h2", got, ok)
	}
}

func TestRegistryStaleDisassociateIsNoop(t *testing.T) {
	r := NewRegistry()
	u := uuid.New()
	h1, h2 := &fakeConn{}, &fakeConn{}

	r.Associate(u, h1)
	r.Associate(u, h2)
	// h1's close event arrives after the reconnect; it must not evict h2
	r.Disassociate(h1)

	got, ok := r.Lookup(u)
	if !ok || got != Conn(h2) {
		t.Fatalf("Lookup after stale disassociate = %v, %v; want h2", got, ok)
	}
}

func TestRegistryDisassociateCurrentHandle(t *testing.T) {
	r := NewRegistry()
	u := uuid.New()
	h := &fakeConn{}

	r.Associate(u, h)
	r.Disassociate(h)
	if _, ok := r.Lookup(u); ok {
		t.Fatal("Lookup found a connection after disassociating the current handle")
	}
	// a second disassociate of the same handle is harmless
	r.Disassociate(h)
}

func TestRegistryReannounceSameHandle(t *testing.T) {
	r := NewRegistry()
	u := uuid.New()
	h := &fakeConn{}

	r.Associate(u, h)
	if orphan := r.Associate(u, h); orphan != nil {
		t.Fatalf("re-announcing the same handle returned orphan %v", orphan)
	}
	got, ok := r.Lookup(u)
	if !ok || got != Conn(h) {
		t.Fatal("Lookup lost the handle after re-announce")
	}
}

func TestRegistryHandleSwitchesUser(t *testing.T) {
	r := NewRegistry()
	u1, u2 := uuid.New(), uuid.New()
	h := &fakeConn{}

	r.Associate(u1, h)
	r.Associate(u2, h)
	if _, ok := r.Lookup(u1); ok {
		t.Error("old user still resolves after the handle announced as another user")
	}
	got, ok := r.Lookup(u2)
	if !ok || got != Conn(h) {
		t.Error("new user does not resolve to the handle")
	}
}

func TestRegistryLookupUnknownUser(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup(uuid.New()); ok {
		t.Fatal("Lookup of an unknown user reported a connection")
	}
}
