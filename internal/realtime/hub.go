// internal/realtime/hub.go
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

// Event is one server-to-client frame.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type taskPayload struct {
	Task models.ResolvedTask `json:"task"`
}

type taskDeletedPayload struct {
	TaskID uuid.UUID `json:"taskId"`
}

// Events is the fanout surface the mutation handlers push through.
type Events interface {
	// NotifyUser pushes an addressed notification. Delivery is best
	// effort, at most once: a user with no registered connection
	// simply never sees it, and that is not an error.
	NotifyUser(userID uuid.UUID, typ models.NotificationType, message string, taskID uuid.UUID)
	TaskCreated(t models.ResolvedTask)
	TaskUpdated(t models.ResolvedTask)
	TaskDeleted(id uuid.UUID)
}

// Hub tracks every open connection for broadcast and owns the registry
// used for addressed delivery. Broadcasts reach all open connections,
// announced or not; addressed events reach only the registry occupant.
type Hub struct {
	registry *Registry

	mu    sync.Mutex
	conns map[Conn]struct{}
}

func NewHub(registry *Registry) *Hub {
	return &Hub{registry: registry, conns: make(map[Conn]struct{})}
}

// Register adds a freshly accepted connection to the broadcast set.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a closed connection from the broadcast set and
// from the registry. Stale handles fall out harmlessly.
func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	h.registry.Disassociate(c)
}

// Announce binds c to userID for addressed delivery. Last session wins:
// a previous connection for the same user is closed rather than left
// silently unaddressed.
func (h *Hub) Announce(userID uuid.UUID, c Conn) {
	if orphan := h.registry.Associate(userID, c); orphan != nil {
		slog.Debug("closing orphaned connection", "user_id", userID.String())
		_ = orphan.Close()
	}
}

func (h *Hub) NotifyUser(userID uuid.UUID, typ models.NotificationType, message string, taskID uuid.UUID) {
	c, ok := h.registry.Lookup(userID)
	if !ok {
		// expected outcome, not an error: no queueing, no retry
		slog.Debug("notification dropped, user not connected", "user_id", userID.String())
		return
	}
	c.Send(Event{Event: "notification", Data: models.Notification{
		Type:      typ,
		Message:   message,
		TaskID:    taskID,
		Timestamp: time.Now().UTC(),
	}})
}

func (h *Hub) broadcast(e Event) {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		c.Send(e)
	}
}

func (h *Hub) TaskCreated(t models.ResolvedTask) {
	h.broadcast(Event{Event: "taskCreated", Data: taskPayload{Task: t}})
}

func (h *Hub) TaskUpdated(t models.ResolvedTask) {
	h.broadcast(Event{Event: "taskUpdated", Data: taskPayload{Task: t}})
}

func (h *Hub) TaskDeleted(id uuid.UUID) {
	h.broadcast(Event{Event: "taskDeleted", Data: taskDeletedPayload{TaskID: id}})
}
