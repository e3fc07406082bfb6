package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

func TestMemoryUserLifecycle(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, models.User{Username: "dana", Email: "dana@example.com", Role: models.RoleLead})
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == uuid.Nil || u.CreatedAt.IsZero() {
		t.Fatalf("CreateUser did not fill identity/timestamps: %+v", u)
	}

	got, err := s.GetUserByEmail(ctx, "dana@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetUserByEmail = %+v, %v", got, err)
	}

	exists, err := s.UserExists(ctx, "other@example.com", "dana")
	if err != nil || !exists {
		t.Error("UserExists must match on username alone")
	}

	u.RefreshToken = "rotated"
	if err := s.SaveUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetUserByID(ctx, u.ID)
	if got.RefreshToken != "rotated" {
		t.Error("SaveUser did not persist the change")
	}
}

func TestMemoryNotFoundSentinels(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if _, err := s.GetUserByID(ctx, uuid.New()); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("GetUserByID err = %v, want ErrUserNotFound", err)
	}
	if _, err := s.GetTaskByID(ctx, uuid.New()); !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("GetTaskByID err = %v, want ErrTaskNotFound", err)
	}
	if err := s.DeleteTask(ctx, uuid.New()); !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("DeleteTask err = %v, want ErrTaskNotFound", err)
	}
	if err := s.SaveTask(ctx, models.Task{ID: uuid.New()}); !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("SaveTask err = %v, want ErrTaskNotFound", err)
	}
}

func TestMemoryListTasksOrder(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	owner := uuid.New()

	soon := time.Now().Add(time.Hour).UTC()
	late := time.Now().Add(48 * time.Hour).UTC()
	mk := func(title string, due *time.Time) {
		if _, err := s.CreateTask(ctx, models.Task{
			Title: title, Status: models.StatusTodo, DueDate: due,
			AssigneeID: owner, AssignedBy: owner,
		}); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond) // distinct CreatedAt for the tie-break
	}
	mk("undated-a", nil)
	mk("late", &late)
	mk("soon", &soon)
	mk("undated-b", nil)

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"soon", "late", "undated-a", "undated-b"}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks", len(tasks))
	}
	for i, title := range want {
		if tasks[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, tasks[i].Title, title)
		}
	}
}
