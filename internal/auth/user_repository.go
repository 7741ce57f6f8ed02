package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/nerrad567/taskhub-core/internal/infrastructure/database"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db database.Executor
}

// NewUserRepository creates a new SQLite-backed user repository. db may be
// a *sql.DB or a *sql.Tx.
func NewUserRepository(db database.Executor) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

const userColumns = "id, username, password_hash, role, organization_id, created_at, updated_at"

// Create inserts a new user account. The ID is generated if empty and the
// role defaults to RoleUser.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = "usr-" + uuid.NewString()[:8]
	}
	if user.Role == "" {
		user.Role = RoleUser
	}

	now := time.Now().UTC().Format(time.RFC3339)
	user.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, string(user.Role),
		nullString(user.OrganizationID), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their unique ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetByUsername retrieves a user by their username.
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// List returns all users ordered by creation date.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at ASC, username ASC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// Update writes a user's username, password hash, role and organization in
// one transaction, together with the rows that depend on them:
//
//   - a user who is no longer a Manager loses their managed-user set
//   - a user who changes organization takes their tasks along and drops
//     every management link they were part of
//
// Clearing the organization of a user who still owns tasks fails with
// ErrUserOwnsTasks.
func (r *SQLiteUserRepository) Update(ctx context.Context, user *User) error {
	now := time.Now().UTC().Format(time.RFC3339)

	err := database.InTx(ctx, r.db, func(tx database.Executor) error {
		var prevOrg sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT organization_id FROM users WHERE id = ?", user.ID).Scan(&prevOrg)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("reading user: %w", err)
		}
		orgChanged := prevOrg.String != user.OrganizationID

		if orgChanged && user.OrganizationID == "" {
			var owned int
			if err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM tasks WHERE user_id = ?", user.ID).Scan(&owned); err != nil {
				return fmt.Errorf("counting user tasks: %w", err)
			}
			if owned > 0 {
				return ErrUserOwnsTasks
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET username = ?, password_hash = ?, role = ?, organization_id = ?, updated_at = ?
			 WHERE id = ?`,
			user.Username, user.PasswordHash, string(user.Role), nullString(user.OrganizationID), now, user.ID,
		); err != nil {
			if isUniqueViolation(err) {
				return ErrUsernameExists
			}
			return fmt.Errorf("updating user: %w", err)
		}

		if user.Role != RoleManager || orgChanged {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM user_management WHERE manager_id = ?", user.ID); err != nil {
				return fmt.Errorf("clearing managed users: %w", err)
			}
		}
		if !orgChanged {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM user_management WHERE user_id = ?", user.ID); err != nil {
			return fmt.Errorf("clearing managers: %w", err)
		}
		if user.OrganizationID != "" {
			if _, err := tx.ExecContext(ctx,
				"UPDATE tasks SET organization_id = ?, updated_at = ? WHERE user_id = ?",
				user.OrganizationID, now, user.ID); err != nil {
				return fmt.Errorf("moving user tasks: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	user.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	return nil
}

// Delete removes a user account. The user's tasks and management
// assignments are removed with it.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the total number of user accounts.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var u User
	var role string
	var orgID sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &orgID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	if orgID.Valid {
		u.OrganizationID = orgID.String
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &u, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
