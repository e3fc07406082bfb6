// internal/repo/repo.go
package repo

import (
	"context"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

// Store defines the persistence methods the rest of the app uses.
// Failures specific to a missing record are models.ErrUserNotFound /
// models.ErrTaskNotFound; anything else is a storage error.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	// UserExists reports whether any user already holds the email or
	// the username.
	UserExists(ctx context.Context, email, username string) (bool, error)
	SaveUser(ctx context.Context, u models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (models.Task, error)
	SaveTask(ctx context.Context, t models.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
	// ListTasks returns all tasks, due date ascending with tasks that
	// have no due date last.
	ListTasks(ctx context.Context) ([]models.Task, error)
}
