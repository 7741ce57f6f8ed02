package organization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/taskhub-core/internal/infrastructure/database"
)

// Repository defines the interface for organization persistence.
type Repository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	Update(ctx context.Context, org *Organization) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db database.Executor
}

// NewRepository creates a new SQLite-backed organization repository. db may
// be a *sql.DB or a *sql.Tx.
func NewRepository(db database.Executor) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new organization. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, org *Organization) error {
	if org.ID == "" {
		org.ID = "org-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	org.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	org.UpdatedAt = org.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		org.ID, org.Name, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating organization: %w", err)
	}
	return nil
}

// GetByID retrieves an organization by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Organization, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM organizations WHERE id = ?", id)
	return scanOrganization(row)
}

// List returns all organizations ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Organization, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM organizations ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	orgs := []Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating organizations: %w", err)
	}
	return orgs, nil
}

// Update renames an organization.
func (r *SQLiteRepository) Update(ctx context.Context, org *Organization) error {
	now := time.Now().UTC().Format(time.RFC3339)
	org.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		"UPDATE organizations SET name = ?, updated_at = ? WHERE id = ?",
		org.Name, now, org.ID,
	)
	if err != nil {
		return fmt.Errorf("updating organization: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

// Delete removes an organization. Its tasks go with it and its users are
// left without an organization.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM organizations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting organization: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrganization(s scanner) (*Organization, error) {
	var org Organization
	var createdAt, updatedAt string

	if err := s.Scan(&org.ID, &org.Name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("scanning organization: %w", err)
	}

	org.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	org.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	return &org, nil
}
