// internal/client/reconcile.go

// Package client holds the client-side state reducers: a task list and
// a notification inbox kept consistent with server pushes. Events may
// arrive in any order relative to REST responses and may be replayed,
// so every merge is an idempotent last-write-wins keyed by identity.
package client

import (
	"time"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

// TaskList is the local task collection.
type TaskList struct {
	tasks []models.ResolvedTask
}

// Replace swaps in a full fetch result.
func (l *TaskList) Replace(ts []models.ResolvedTask) {
	l.tasks = append([]models.ResolvedTask(nil), ts...)
}

// upsert replaces the task with the same identity, or appends when the
// task is not present yet. Applying the same event twice is a no-op
// after the first application.
func (l *TaskList) upsert(t models.ResolvedTask) {
	for i := range l.tasks {
		if l.tasks[i].ID == t.ID {
			l.tasks[i] = t
			return
		}
	}
	l.tasks = append(l.tasks, t)
}

// ApplyCreated merges a taskCreated event.
func (l *TaskList) ApplyCreated(t models.ResolvedTask) { l.upsert(t) }

// ApplyUpdated merges a taskUpdated event.
func (l *TaskList) ApplyUpdated(t models.ResolvedTask) { l.upsert(t) }

// ApplyDeleted merges a taskDeleted event by filtering the identity
// out. Deleting an unknown identity is a no-op.
func (l *TaskList) ApplyDeleted(id uuid.UUID) {
	kept := l.tasks[:0]
	for _, t := range l.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	l.tasks = kept
}

// Tasks returns a copy of the current collection.
func (l *TaskList) Tasks() []models.ResolvedTask {
	return append([]models.ResolvedTask(nil), l.tasks...)
}

// InboxItem is a received notification plus client-local read state.
// The ID is assigned locally from the arrival time; read state never
// leaves the client.
type InboxItem struct {
	ID   int64 `json:"id"`
	Read bool  `json:"read"`
	models.Notification
}

// Inbox is the local notification list, newest first.
type Inbox struct {
	items  []InboxItem
	lastID int64
}

// Add prepends a freshly received notification, unread.
func (b *Inbox) Add(n models.Notification) InboxItem {
	id := time.Now().UnixMilli()
	if id <= b.lastID {
		id = b.lastID + 1
	}
	b.lastID = id
	item := InboxItem{ID: id, Notification: n}
	b.items = append([]InboxItem{item}, b.items...)
	return item
}

// MarkRead flags one item as read.
func (b *Inbox) MarkRead(id int64) {
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].Read = true
			return
		}
	}
}

// MarkAllRead flags everything as read.
func (b *Inbox) MarkAllRead() {
	for i := range b.items {
		b.items[i].Read = true
	}
}

// Clear drops all items.
func (b *Inbox) Clear() { b.items = nil }

// Unread counts the items not yet read.
func (b *Inbox) Unread() int {
	n := 0
	for _, it := range b.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Items returns a copy, newest first.
func (b *Inbox) Items() []InboxItem {
	return append([]InboxItem(nil), b.items...)
}
