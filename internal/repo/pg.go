// internal/repo/pg.go
package repo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/models"
)

// pgStore is the Postgres implementation of Store.
type pgStore struct{ pool *pgxpool.Pool }

func NewPG(pool *pgxpool.Pool) Store { return &pgStore{pool: pool} }

// Schema for reference; applied out of band (migrations are not this
// package's concern).
//
//	CREATE TABLE users (
//	    id            uuid PRIMARY KEY,
//	    username      text NOT NULL UNIQUE,
//	    email         text NOT NULL UNIQUE,
//	    role          text NOT NULL,
//	    password_hash text NOT NULL,
//	    refresh_token text NOT NULL DEFAULT '',
//	    created_at    timestamptz NOT NULL,
//	    updated_at    timestamptz NOT NULL
//	);
//	CREATE TABLE tasks (
//	    id          uuid PRIMARY KEY,
//	    title       text NOT NULL,
//	    description text NOT NULL,
//	    status      text NOT NULL,
//	    due_date    timestamptz,
//	    assignee_id uuid NOT NULL REFERENCES users(id),
//	    assigned_by uuid NOT NULL REFERENCES users(id),
//	    created_at  timestamptz NOT NULL,
//	    updated_at  timestamptz NOT NULL
//	);

// ---------------- Users ----------------

const userCols = `id, username, email, role, password_hash, refresh_token, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &role, &u.PasswordHash, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	u.Role = models.Role(role)
	return u, nil
}

func (p *pgStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	slog.DebugContext(ctx, "CreateUser", "username", u.Username, "role", string(u.Role))
	now := time.Now().UTC()
	u.ID = uuid.New()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (`+userCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Username, u.Email, string(u.Role), u.PasswordHash, u.RefreshToken, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "CreateUser failed", "err", err)
		return models.User{}, err
	}
	return u, nil
}

func (p *pgStore) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (p *pgStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (p *pgStore) UserExists(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)`,
		email, username).Scan(&exists)
	return exists, err
}

func (p *pgStore) SaveUser(ctx context.Context, u models.User) error {
	slog.DebugContext(ctx, "SaveUser", "user_id", u.ID.String())
	u.UpdatedAt = time.Now().UTC()
	tag, err := p.pool.Exec(ctx,
		`UPDATE users SET username=$2, email=$3, role=$4, password_hash=$5, refresh_token=$6, updated_at=$7 WHERE id=$1`,
		u.ID, u.Username, u.Email, string(u.Role), u.PasswordHash, u.RefreshToken, u.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (p *pgStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ---------------- Tasks ----------------

const taskCols = `id, title, description, status, due_date, assignee_id, assigned_by, created_at, updated_at`

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	var status string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.DueDate, &t.AssigneeID, &t.AssignedBy, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, models.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	t.Status = models.TaskStatus(status)
	return t, nil
}

func (p *pgStore) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	slog.DebugContext(ctx, "CreateTask", "title", t.Title, "assignee_id", t.AssigneeID.String())
	now := time.Now().UTC()
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := p.pool.Exec(ctx,
		`INSERT INTO tasks (`+taskCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.Title, t.Description, string(t.Status), t.DueDate, t.AssigneeID, t.AssignedBy, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "CreateTask failed", "err", err)
		return models.Task{}, err
	}
	return t, nil
}

func (p *pgStore) GetTaskByID(ctx context.Context, id uuid.UUID) (models.Task, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (p *pgStore) SaveTask(ctx context.Context, t models.Task) error {
	slog.DebugContext(ctx, "SaveTask", "task_id", t.ID.String())
	t.UpdatedAt = time.Now().UTC()
	tag, err := p.pool.Exec(ctx,
		`UPDATE tasks SET title=$2, description=$3, status=$4, due_date=$5, assignee_id=$6, updated_at=$7 WHERE id=$1`,
		t.ID, t.Title, t.Description, string(t.Status), t.DueDate, t.AssigneeID, t.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

func (p *pgStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	slog.DebugContext(ctx, "DeleteTask", "task_id", id.String())
	tag, err := p.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

func (p *pgStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+taskCols+` FROM tasks ORDER BY due_date ASC NULLS LAST, created_at ASC`)
	if err != nil {
		slog.ErrorContext(ctx, "ListTasks failed", "err", err)
		return nil, err
	}
	defer rows.Close()
	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
