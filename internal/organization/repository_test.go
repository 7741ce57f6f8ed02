package organization

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/taskhub-core/internal/infrastructure/database"
	"github.com/nerrad567/taskhub-core/migrations"
)

// testDB opens a migrated temporary database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(t.Context(), database.Config{
		Path:        filepath.Join(t.TempDir(), "org-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(t.Context(), migrations.FS); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db.DB
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := t.Context()

	org := &Organization{Name: "Acme"}
	if err := repo.Create(ctx, org); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(org.ID) != len("org-")+8 || org.ID[:4] != "org-" {
		t.Errorf("ID = %q, want org- prefix and 8 hex chars", org.ID)
	}
	if org.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := repo.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Acme" {
		t.Errorf("Name = %q, want %q", got.Name, "Acme")
	}
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := NewRepository(testDB(t))

	_, err := repo.GetByID(t.Context(), "org-missing")
	if !errors.Is(err, ErrOrganizationNotFound) {
		t.Errorf("GetByID() error = %v, want ErrOrganizationNotFound", err)
	}
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := t.Context()

	empty, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List() on empty table = %v, want empty non-nil slice", empty)
	}

	for _, name := range []string{"Zeta", "Alpha"} {
		if err := repo.Create(ctx, &Organization{Name: name}); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	orgs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(orgs) != 2 || orgs[0].Name != "Alpha" || orgs[1].Name != "Zeta" {
		t.Errorf("List() = %+v, want Alpha then Zeta", orgs)
	}
}

func TestRepository_Update(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := t.Context()

	org := &Organization{Name: "Before"}
	if err := repo.Create(ctx, org); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	org.Name = "After"
	if err := repo.Update(ctx, org); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, org.ID)
	if got.Name != "After" {
		t.Errorf("Name = %q, want %q", got.Name, "After")
	}

	missing := &Organization{ID: "org-missing", Name: "x"}
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrOrganizationNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrOrganizationNotFound", err)
	}
}

func TestRepository_Delete(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := t.Context()

	org := &Organization{Name: "Doomed"}
	if err := repo.Create(ctx, org); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, org.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, org.ID); !errors.Is(err, ErrOrganizationNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrOrganizationNotFound", err)
	}
	if err := repo.Delete(ctx, org.ID); !errors.Is(err, ErrOrganizationNotFound) {
		t.Errorf("second Delete() error = %v, want ErrOrganizationNotFound", err)
	}
}

func TestNormaliseName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"  Acme  ", "Acme", nil},
		{"Acme", "Acme", nil},
		{"   ", "", ErrInvalidName},
		{"", "", ErrInvalidName},
		{strings.Repeat("a", maxNameLength+1), "", ErrNameTooLong},
	}

	for _, tt := range tests {
		got, err := NormaliseName(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("NormaliseName(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormaliseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
