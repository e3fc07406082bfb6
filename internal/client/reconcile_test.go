package client

import (
	"testing"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

func task(id uuid.UUID, title string) models.ResolvedTask {
	return models.ResolvedTask{ID: id, Title: title, Status: models.StatusTodo}
}

func TestTaskListUpsertIdempotent(t *testing.T) {
	var l TaskList
	id := uuid.New()

	l.ApplyUpdated(task(id, "v1"))
	l.ApplyUpdated(task(id, "v1"))

	got := l.Tasks()
	if len(got) != 1 {
		t.Fatalf("replaying the same event produced %d entries, want 1", len(got))
	}
	if got[0].Title != "v1" {
		t.Errorf("title = %q", got[0].Title)
	}
}

func TestTaskListUpdateBeforeFetchAppends(t *testing.T) {
	// a taskUpdated can arrive before the REST list response; it must
	// still land, and the later event version must win
	var l TaskList
	id := uuid.New()

	l.ApplyUpdated(task(id, "from socket"))
	if len(l.Tasks()) != 1 {
		t.Fatal("event for unknown task was not appended")
	}
	l.ApplyUpdated(task(id, "newer"))
	if got := l.Tasks(); got[0].Title != "newer" {
		t.Errorf("last write did not win, title = %q", got[0].Title)
	}
}

func TestTaskListCreatedThenDeleted(t *testing.T) {
	var l TaskList
	a, b := uuid.New(), uuid.New()
	l.ApplyCreated(task(a, "a"))
	l.ApplyCreated(task(b, "b"))

	l.ApplyDeleted(a)
	l.ApplyDeleted(a) // replay is a no-op

	got := l.Tasks()
	if len(got) != 1 || got[0].ID != b {
		t.Fatalf("tasks after delete = %+v, want only b", got)
	}
}

func TestTaskListDeleteUnknownIsNoop(t *testing.T) {
	var l TaskList
	l.ApplyCreated(task(uuid.New(), "a"))
	l.ApplyDeleted(uuid.New())
	if len(l.Tasks()) != 1 {
		t.Fatal("deleting an unknown id changed the list")
	}
}

func TestInboxPrependsNewestFirst(t *testing.T) {
	var b Inbox
	first := b.Add(models.Notification{Type: models.NotifyInfo, Message: "first"})
	second := b.Add(models.Notification{Type: models.NotifyInfo, Message: "second"})

	if first.ID == second.ID {
		t.Fatal("local identities collided")
	}
	items := b.Items()
	if len(items) != 2 || items[0].Message != "second" {
		t.Fatalf("items = %+v, want newest first", items)
	}
	if items[0].Read || items[1].Read {
		t.Error("new items must start unread")
	}
}

func TestInboxReadState(t *testing.T) {
	var b Inbox
	it := b.Add(models.Notification{Message: "a"})
	b.Add(models.Notification{Message: "b"})

	if b.Unread() != 2 {
		t.Fatalf("Unread = %d, want 2", b.Unread())
	}
	b.MarkRead(it.ID)
	if b.Unread() != 1 {
		t.Errorf("Unread after MarkRead = %d, want 1", b.Unread())
	}
	b.MarkAllRead()
	if b.Unread() != 0 {
		t.Errorf("Unread after MarkAllRead = %d, want 0", b.Unread())
	}
	b.Clear()
	if len(b.Items()) != 0 {
		t.Error("Clear left items behind")
	}
}
