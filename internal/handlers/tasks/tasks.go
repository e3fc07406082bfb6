// internal/handlers/tasks/tasks.go
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskhub/internal/auth"
	"taskhub/internal/httpx"
	"taskhub/internal/models"
	"taskhub/internal/realtime"
	"taskhub/internal/repo"
)

type Handler struct {
	store  repo.Store
	events realtime.Events
}

func New(store repo.Store, events realtime.Events) *Handler {
	return &Handler{store: store, events: events}
}

// resolve expands a task's user references for the wire.
func (h *Handler) resolve(ctx context.Context, t models.Task) (models.ResolvedTask, error) {
	assignee, err := h.store.GetUserByID(ctx, t.AssigneeID)
	if err != nil {
		return models.ResolvedTask{}, fmt.Errorf("resolve assignee: %w", err)
	}
	creator, err := h.store.GetUserByID(ctx, t.AssignedBy)
	if err != nil {
		return models.ResolvedTask{}, fmt.Errorf("resolve creator: %w", err)
	}
	return models.ResolvedTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		Assignee:    assignee.Public(),
		AssignedBy:  creator.Public(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

// checkAssignment resolves the assignee and applies the assignment
// policy. Assignee-not-found and policy-denied surface as distinct
// error kinds.
func (h *Handler) checkAssignment(ctx context.Context, actor *models.User, assigneeID uuid.UUID) (models.User, error) {
	assignee, err := h.store.GetUserByID(ctx, assigneeID)
	if err != nil {
		return models.User{}, err
	}
	if !models.CanAssign(actor.Role, assignee.Role, actor.ID == assignee.ID) {
		return models.User{}, fmt.Errorf("%w: you can only assign tasks to users with lower roles or yourself", models.ErrForbidden)
	}
	return assignee, nil
}

// List returns all tasks with users expanded, due date ascending.
// GET /api/tasks
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ts, err := h.store.ListTasks(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	resolved := make([]models.ResolvedTask, 0, len(ts))
	for _, t := range ts {
		rt, err := h.resolve(r.Context(), t)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		resolved = append(resolved, rt)
	}
	httpx.JSON(w, http.StatusOK, resolved)
}

// Create persists a new task and fans out the events: a success
// notification to the creator, an assignment notification to the
// assignee when that is someone else, and a taskCreated broadcast to
// every connected client.
// POST /api/tasks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Message(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Status      models.TaskStatus `json:"status"`
		DueDate     *time.Time        `json:"dueDate"`
		Assignee    uuid.UUID         `json:"assignee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Title = strings.TrimSpace(body.Title)
	body.Description = strings.TrimSpace(body.Description)
	if body.Title == "" || body.Description == "" {
		httpx.Message(w, http.StatusBadRequest, "title and description are required")
		return
	}
	if body.Assignee == uuid.Nil {
		httpx.Message(w, http.StatusBadRequest, "assignee ID is required")
		return
	}
	if body.Status == "" {
		body.Status = models.StatusTodo
	}
	if !models.ValidStatus(body.Status) {
		httpx.Message(w, http.StatusBadRequest, "invalid status")
		return
	}
	if _, err := h.checkAssignment(r.Context(), actor, body.Assignee); err != nil {
		httpx.Error(w, err)
		return
	}

	t, err := h.store.CreateTask(r.Context(), models.Task{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		DueDate:     body.DueDate,
		AssigneeID:  body.Assignee,
		AssignedBy:  actor.ID,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	rt, err := h.resolve(r.Context(), t)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	h.events.NotifyUser(actor.ID, models.NotifySuccess, "Task created successfully", t.ID)
	if rt.Assignee.ID != actor.ID {
		h.events.NotifyUser(rt.Assignee.ID, models.NotifySuccess, "New task assigned: "+t.Title, t.ID)
	}
	h.events.TaskCreated(rt)

	httpx.JSON(w, http.StatusCreated, rt)
}

// Update applies a partial update. A field changes only when present
// in the request; dueDate is special-cased so that an explicit null
// clears it. Three notification conditions are evaluated independently
// and may all fire for one request; the reassigned and task-updated
// notifications can double-fire to the same user, which is accepted.
// PATCH /api/tasks/{taskID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Message(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	// raw keys, so "present with null value" is distinguishable from absent
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid request body")
		return
	}
	field := func(key string, dst any) bool {
		v, ok := raw[key]
		if !ok {
			return false
		}
		return json.Unmarshal(v, dst) == nil
	}

	task, err := h.store.GetTaskByID(r.Context(), taskID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	oldAssignee := task.AssigneeID

	var title, description string
	if field("title", &title) && strings.TrimSpace(title) != "" {
		task.Title = strings.TrimSpace(title)
	}
	if field("description", &description) && strings.TrimSpace(description) != "" {
		task.Description = strings.TrimSpace(description)
	}
	var status models.TaskStatus
	statusChanged := false
	if field("status", &status) && status != "" {
		if !models.ValidStatus(status) {
			httpx.Message(w, http.StatusBadRequest, "invalid status")
			return
		}
		task.Status = status
		statusChanged = true
	}
	var due *time.Time
	_, dueProvided := raw["dueDate"]
	if dueProvided {
		if !field("dueDate", &due) {
			httpx.Message(w, http.StatusBadRequest, "invalid due date")
			return
		}
		task.DueDate = due // nil clears the due date
	}
	var assigneeID *uuid.UUID
	if field("assignee", &assigneeID) && assigneeID != nil {
		if _, err := h.checkAssignment(r.Context(), actor, *assigneeID); err != nil {
			httpx.Error(w, err)
			return
		}
		task.AssigneeID = *assigneeID
	}

	if err := h.store.SaveTask(r.Context(), task); err != nil {
		httpx.Error(w, err)
		return
	}
	task, err = h.store.GetTaskByID(r.Context(), taskID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	rt, err := h.resolve(r.Context(), task)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if rt.Assignee.ID != oldAssignee {
		h.events.NotifyUser(rt.Assignee.ID, models.NotifyInfo, "Task reassigned to you: "+rt.Title, rt.ID)
	}
	if oldAssignee != uuid.Nil && rt.Assignee.ID != oldAssignee {
		h.events.NotifyUser(oldAssignee, models.NotifyInfo, "Task "+rt.Title+" was unassigned from you.", rt.ID)
	}
	if statusChanged || dueProvided {
		h.events.NotifyUser(rt.Assignee.ID, models.NotifyInfo, "Task updated: "+rt.Title, rt.ID)
	}
	h.events.TaskUpdated(rt)

	httpx.JSON(w, http.StatusOK, rt)
}

// Delete removes a task. The gate is the creator's role, not the
// assignee's: same-or-higher rank than the creator may delete. The
// assignee, if connected, gets a single warning notification, and the
// deletion is broadcast so every client can drop the task.
// DELETE /api/tasks/{taskID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Message(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid task ID")
		return
	}
	task, err := h.store.GetTaskByID(r.Context(), taskID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	creator, err := h.store.GetUserByID(r.Context(), task.AssignedBy)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !models.CanDelete(actor.Role, creator.Role) {
		httpx.Error(w, fmt.Errorf("%w: you do not have permission to delete this task", models.ErrForbidden))
		return
	}
	if err := h.store.DeleteTask(r.Context(), taskID); err != nil {
		httpx.Error(w, err)
		return
	}

	if task.AssigneeID != uuid.Nil {
		h.events.NotifyUser(task.AssigneeID, models.NotifyWarning, "Task deleted: "+task.Title, task.ID)
	}
	h.events.TaskDeleted(task.ID)

	httpx.Message(w, http.StatusOK, "task deleted successfully")
}
