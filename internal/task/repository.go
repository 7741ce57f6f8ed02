package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for task persistence.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	Find(ctx context.Context, f Filter) ([]Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed task repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const taskColumns = "id, title, description, status, due_date, user_id, organization_id, created_at, updated_at"

// Create inserts a new task. The ID is generated if empty and the status
// defaults to StatusPending.
func (r *SQLiteRepository) Create(ctx context.Context, t *Task) error {
	if t.ID == "" {
		t.ID = "tsk-" + uuid.NewString()[:8]
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if !IsValidStatus(t.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	t.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Status), formatDueDate(t.DueDate),
		t.UserID, t.OrganizationID, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	return scanTask(row)
}

// Find returns the tasks matching f, oldest first.
func (r *SQLiteRepository) Find(ctx context.Context, f Filter) ([]Task, error) {
	tasks := []Task{}
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return tasks, nil
	}

	var where []string
	var args []any
	if f.OrganizationID != "" {
		where = append(where, "organization_id = ?")
		args = append(args, f.OrganizationID)
	}
	if len(f.UserIDs) > 0 {
		where = append(where, "user_id IN (?"+strings.Repeat(", ?", len(f.UserIDs)-1)+")")
		for _, id := range f.UserIDs {
			args = append(args, id)
		}
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// Update writes every mutable field of t.
func (r *SQLiteRepository) Update(ctx context.Context, t *Task) error {
	if !IsValidStatus(t.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, due_date = ?,
		 user_id = ?, organization_id = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, string(t.Status), formatDueDate(t.DueDate),
		t.UserID, t.OrganizationID, now, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrTaskNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*Task, error) {
	var t Task
	var status string
	var dueDate sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&t.ID, &t.Title, &t.Description, &status, &dueDate,
		&t.UserID, &t.OrganizationID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.Status = Status(status)
	if dueDate.Valid {
		if d, err := time.Parse(time.RFC3339, dueDate.String); err == nil {
			t.DueDate = &d
		}
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &t, nil
}

func formatDueDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.UTC().Format(time.RFC3339), Valid: true}
}
