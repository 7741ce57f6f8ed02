package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/taskhub-core/internal/infrastructure/database"
)

// ManagementRepository persists each Manager's managed-user set.
type ManagementRepository interface {
	SetManagedUsers(ctx context.Context, managerID string, userIDs []string) error
	GetManagedUserIDs(ctx context.Context, managerID string) ([]string, error)
}

// SQLiteManagementRepository implements ManagementRepository using SQLite.
type SQLiteManagementRepository struct {
	db database.Executor
}

// NewManagementRepository creates a new SQLite-backed management repository.
func NewManagementRepository(db database.Executor) *SQLiteManagementRepository {
	return &SQLiteManagementRepository{db: db}
}

// SetManagedUsers replaces the managed-user set of managerID.
// Pass an empty slice to clear it. Duplicate IDs are collapsed.
func (r *SQLiteManagementRepository) SetManagedUsers(ctx context.Context, managerID string, userIDs []string) error {
	return database.InTx(ctx, r.db, func(tx database.Executor) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_management WHERE manager_id = ?", managerID); err != nil {
			return fmt.Errorf("clearing managed users: %w", err)
		}

		now := time.Now().UTC().Format(time.RFC3339)
		for _, userID := range userIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO user_management (manager_id, user_id, created_at) VALUES (?, ?, ?)",
				managerID, userID, now); err != nil {
				return fmt.Errorf("assigning user %s: %w", userID, err)
			}
		}
		return nil
	})
}

// GetManagedUserIDs returns the users assigned to managerID, sorted by ID.
// The result is never nil.
func (r *SQLiteManagementRepository) GetManagedUserIDs(ctx context.Context, managerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM user_management WHERE manager_id = ? ORDER BY user_id", managerID)
	if err != nil {
		return nil, fmt.Errorf("getting managed users: %w", err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scanning user ID: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user IDs: %w", err)
	}
	return userIDs, nil
}
