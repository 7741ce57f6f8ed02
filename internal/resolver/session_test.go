package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/taskhub-core/internal/auth"
	"github.com/nerrad567/taskhub-core/internal/events"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)

	payload, err := f.r.Login(t.Context(), " u1 ", testPassword)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if payload.User.ID != f.u1.ID {
		t.Errorf("User.ID = %q, want %q", payload.User.ID, f.u1.ID)
	}

	id, err := f.tokens.Verify(payload.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.ID != f.u1.ID || id.Role != auth.RoleUser || id.OrganizationID != f.org1.ID {
		t.Errorf("identity = %+v", id)
	}
}

func TestLogin_ManagerTokenCarriesManagedSet(t *testing.T) {
	f := newFixture(t)

	payload, err := f.r.Login(t.Context(), "manager", testPassword)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	id, err := f.tokens.Verify(payload.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !id.Manages(f.u1.ID) || !id.Manages(f.u2.ID) || id.Manages(f.u3.ID) {
		t.Errorf("managed set = %v", id.ManagedUserIDs)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "u1", "nope"},
		{"unknown user", "nobody", testPassword},
		{"empty username", "", testPassword},
		{"empty password", "u1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.r.Login(t.Context(), tt.username, tt.password)
			wantErr(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestNew_PrimesLoginTimingHash(t *testing.T) {
	f := newFixture(t)

	if f.r.dummyHash == "" {
		t.Fatal("dummyHash should be computed by New")
	}
	ok, err := auth.VerifyPassword(dummyPassword, f.r.dummyHash)
	if err != nil || !ok {
		t.Errorf("VerifyPassword(dummyPassword) = %v, %v; want true, nil", ok, err)
	}
}

func TestBurnVerify_CancelledContextDoesNotDisableTimingHash(t *testing.T) {
	f := newFixture(t)
	f.r.dummyHash = ""

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := f.r.burnVerify(ctx, "whatever")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("burnVerify(cancelled) error = %v, want context.Canceled", err)
	}
	if f.r.dummyHash == "" {
		t.Fatal("dummyHash should be computed despite the cancelled context")
	}

	_, err = f.r.Login(t.Context(), "nobody", testPassword)
	wantErr(t, err, auth.ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	u, err := f.r.Me(f.as(t, f.u2))
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if u.Username != "u2" {
		t.Errorf("Username = %q, want u2", u.Username)
	}

	_, err = f.r.Me(t.Context())
	wantErr(t, err, auth.ErrUnauthorized)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	got, err := f.r.CreateTask(f.as(t, f.u1), CreateTaskInput{Title: "still saved"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if n := f.taskCount(t); n != 1 {
		t.Errorf("task count = %d, want 1", n)
	}
	if got.ID == "" {
		t.Error("created task has no ID")
	}
}

func TestNew_DefaultsToNoopPublisher(t *testing.T) {
	r := New(Deps{})
	if _, ok := r.events.(events.Noop); !ok {
		t.Errorf("events = %T, want events.Noop", r.events)
	}
	if r.logger == nil {
		t.Error("logger should default to non-nil")
	}
}
