// internal/models/types.go
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// ValidStatus reports whether s is one of the three task states.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTaskNotFound = errors.New("task not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	Role         Role
	PasswordHash string
	RefreshToken string // current refresh token, empty after logout
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the shape users take on the wire: no credential material.
type PublicUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time // nil when no due date is set
	AssigneeID  uuid.UUID
	AssignedBy  uuid.UUID // creator, never changes after create
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ResolvedTask is a Task with both user references expanded, the form
// every wire payload and REST response carries.
type ResolvedTask struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	Assignee    PublicUser `json:"assignee"`
	AssignedBy  PublicUser `json:"assignedBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyInfo    NotificationType = "info"
	NotifyWarning NotificationType = "warning"
)

// Notification is ephemeral: it exists only on the wire, never at rest.
type Notification struct {
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	TaskID    uuid.UUID        `json:"taskId"`
	Timestamp time.Time        `json:"timestamp"`
}
