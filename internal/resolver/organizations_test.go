package resolver

import (
	"errors"
	"testing"

	"github.com/nerrad567/taskhub-core/internal/auth"
)

func TestOrganizations(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(t, f.admin)

	created, err := f.r.CreateOrganization(ctx, "  Org Three ")
	if err != nil {
		t.Fatalf("CreateOrganization() error = %v", err)
	}
	if created.Name != "Org Three" {
		t.Errorf("Name = %q, want trimmed", created.Name)
	}

	orgs, err := f.r.Organizations(ctx)
	if err != nil {
		t.Fatalf("Organizations() error = %v", err)
	}
	if len(orgs) != 3 {
		t.Errorf("Organizations() returned %d, want 3", len(orgs))
	}

	renamed, err := f.r.UpdateOrganization(ctx, created.ID, "Org 3")
	if err != nil {
		t.Fatalf("UpdateOrganization() error = %v", err)
	}
	if renamed.Name != "Org 3" {
		t.Errorf("Name = %q, want %q", renamed.Name, "Org 3")
	}

	if err := f.r.DeleteOrganization(ctx, created.ID); err != nil {
		t.Fatalf("DeleteOrganization() error = %v", err)
	}
	_, err = f.r.Organization(ctx, created.ID)
	wantErr(t, err, ErrNotFound)
}

func TestOrganizations_NonAdminDenied(t *testing.T) {
	f := newFixture(t)

	for _, u := range []*auth.User{f.manager, f.u1} {
		ctx := f.as(t, u)
		if _, err := f.r.Organizations(ctx); !errors.Is(err, auth.ErrUnauthorized) {
			t.Errorf("Organizations() as %s error = %v", u.Role, err)
		}
		// Denied before lookup, so a missing organization is not revealed.
		if _, err := f.r.Organization(ctx, "org-missing"); !errors.Is(err, auth.ErrUnauthorized) {
			t.Errorf("Organization() as %s error = %v", u.Role, err)
		}
		if _, err := f.r.CreateOrganization(ctx, "x"); !errors.Is(err, auth.ErrUnauthorized) {
			t.Errorf("CreateOrganization() as %s error = %v", u.Role, err)
		}
	}

	_, err := f.r.Organizations(t.Context())
	wantErr(t, err, auth.ErrUnauthorized)
}

func TestCreateOrganization_InvalidName(t *testing.T) {
	f := newFixture(t)

	_, err := f.r.CreateOrganization(f.as(t, f.admin), "   ")
	wantErr(t, err, ErrInvalidInput)
}

func TestDeleteOrganization_DetachesUsersAndDropsTasks(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, "a", f.outsider)

	if err := f.r.DeleteOrganization(f.as(t, f.admin), f.org2.ID); err != nil {
		t.Fatalf("DeleteOrganization() error = %v", err)
	}

	u, err := f.r.User(f.as(t, f.admin), f.outsider.ID)
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}
	if u.OrganizationID != "" {
		t.Errorf("OrganizationID = %q, want empty", u.OrganizationID)
	}
	if n := f.taskCount(t); n != 0 {
		t.Errorf("task count = %d, want 0", n)
	}
}
