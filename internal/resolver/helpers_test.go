package resolver

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nerrad567/taskhub-core/internal/auth"
	"github.com/nerrad567/taskhub-core/internal/events"
	"github.com/nerrad567/taskhub-core/internal/infrastructure/database"
	"github.com/nerrad567/taskhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/taskhub-core/internal/organization"
	"github.com/nerrad567/taskhub-core/internal/task"
	"github.com/nerrad567/taskhub-core/migrations"
)

const (
	testSecret   = "resolver-test-secret-at-least-32-chars"
	testPassword = "test-password"
	testCost     = 4
)

// recorder captures published events and can be told to fail.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// fixture is a resolver over a fresh database holding two organizations.
//
//	org1: admin, manager (manages u1 and u2), u1, u2, u3
//	org2: outsider
type fixture struct {
	r      *Resolver
	db     *sql.DB
	tokens *auth.TokenService
	events *recorder

	org1, org2 *organization.Organization

	admin, manager, u1, u2, u3, outsider *auth.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(t.Context(), database.Config{
		Path:        filepath.Join(t.TempDir(), "resolver-test.db"),
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

	tokens, err := auth.NewTokenService(testSecret, 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	f := &fixture{db: db.DB, tokens: tokens, events: &recorder{}}
	hasher := auth.NewHasher(testCost, 2)
	f.r = New(Deps{
		Users:         auth.NewUserRepository(db.DB),
		Management:    auth.NewManagementRepository(db.DB),
		Organizations: organization.NewRepository(db.DB),
		Tasks:         task.NewRepository(db.DB),
		Tokens:        tokens,
		Hasher:        hasher,
		Events:        f.events,
		Logger:        logging.Discard(),
	})

	f.org1 = f.seedOrg(t, "Org One")
	f.org2 = f.seedOrg(t, "Org Two")
	f.admin = f.seedUser(t, "admin", auth.RoleAdmin, f.org1.ID)
	f.manager = f.seedUser(t, "manager", auth.RoleManager, f.org1.ID)
	f.u1 = f.seedUser(t, "u1", auth.RoleUser, f.org1.ID)
	f.u2 = f.seedUser(t, "u2", auth.RoleUser, f.org1.ID)
	f.u3 = f.seedUser(t, "u3", auth.RoleUser, f.org1.ID)
	f.outsider = f.seedUser(t, "outsider", auth.RoleUser, f.org2.ID)

	if err := auth.NewManagementRepository(db.DB).SetManagedUsers(t.Context(), f.manager.ID,
		[]string{f.u1.ID, f.u2.ID}); err != nil {
		t.Fatalf("SetManagedUsers() error = %v", err)
	}
	return f
}

func (f *fixture) seedOrg(t *testing.T, name string) *organization.Organization {
	t.Helper()

	org := &organization.Organization{Name: name}
	if err := organization.NewRepository(f.db).Create(t.Context(), org); err != nil {
		t.Fatalf("creating organization %s: %v", name, err)
	}
	return org
}

func (f *fixture) seedUser(t *testing.T, username string, role auth.Role, orgID string) *auth.User {
	t.Helper()

	hash, err := auth.NewHasher(testCost, 1).Hash(t.Context(), testPassword)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	u := &auth.User{Username: username, PasswordHash: hash, Role: role, OrganizationID: orgID}
	if err := auth.NewUserRepository(f.db).Create(t.Context(), u); err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return u
}

func (f *fixture) seedTask(t *testing.T, title string, owner *auth.User) *task.Task {
	t.Helper()

	tk := &task.Task{Title: title, UserID: owner.ID, OrganizationID: owner.OrganizationID}
	if err := task.NewRepository(f.db).Create(t.Context(), tk); err != nil {
		t.Fatalf("creating task %s: %v", title, err)
	}
	return tk
}

// as returns a context carrying the identity of u, with the managed set
// loaded for Managers.
func (f *fixture) as(t *testing.T, u *auth.User) context.Context {
	t.Helper()

	var managed []string
	if u.Role == auth.RoleManager {
		ids, err := auth.NewManagementRepository(f.db).GetManagedUserIDs(t.Context(), u.ID)
		if err != nil {
			t.Fatalf("GetManagedUserIDs() error = %v", err)
		}
		managed = ids
	}
	return auth.WithIdentity(t.Context(), auth.IdentityFor(u, managed))
}

func (f *fixture) taskCount(t *testing.T) int {
	t.Helper()

	var n int
	if err := f.db.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		t.Fatalf("counting tasks: %v", err)
	}
	return n
}

func wantErr(t *testing.T, err, want error) {
	t.Helper()

	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
}

func taskOwners(tasks []task.Task) map[string]int {
	owners := map[string]int{}
	for _, tk := range tasks {
		owners[tk.UserID]++
	}
	return owners
}
