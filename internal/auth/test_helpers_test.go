package auth

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/taskhub-core/internal/infrastructure/database"
	"github.com/nerrad567/taskhub-core/internal/organization"
	"github.com/nerrad567/taskhub-core/migrations"
)

// testCost keeps bcrypt fast in tests.
const testCost = 4

// testDB creates a temporary SQLite database with the full schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(t.Context(), database.Config{
		Path:        filepath.Join(t.TempDir(), "auth-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(t.Context(), migrations.FS); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	return db.DB
}

// seedTestOrg inserts an organization and returns it.
func seedTestOrg(t *testing.T, db *sql.DB, name string) *organization.Organization {
	t.Helper()

	org := &organization.Organization{Name: name}
	if err := organization.NewRepository(db).Create(t.Context(), org); err != nil {
		t.Fatalf("creating test organization %s: %v", name, err)
	}
	return org
}

// seedTestUser inserts a test user with password "test-password".
func seedTestUser(t *testing.T, db *sql.DB, username string, role Role, orgID string) *User {
	t.Helper()

	hash, err := NewHasher(testCost, 1).Hash(t.Context(), "test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	user := &User{
		Username:       username,
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: orgID,
	}
	if err := NewUserRepository(db).Create(t.Context(), user); err != nil {
		t.Fatalf("creating test user %s: %v", username, err)
	}
	return user
}

// seedTestTask inserts a task row owned by userID.
func seedTestTask(t *testing.T, db *sql.DB, id, userID, orgID string) {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.ExecContext(t.Context(),
		`INSERT INTO tasks (id, title, user_id, organization_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`, id, id, userID, orgID, now, now); err != nil {
		t.Fatalf("creating test task %s: %v", id, err)
	}
}
