package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/taskhub-core/internal/auth"
	"github.com/nerrad567/taskhub-core/internal/events"
	"github.com/nerrad567/taskhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/taskhub-core/internal/organization"
	"github.com/nerrad567/taskhub-core/internal/task"
)

// Sentinel errors returned by resolver operations.
var (
	// ErrNotFound wraps the repository not-found errors.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput reports a malformed request.
	ErrInvalidInput = errors.New("invalid input")
)

// Deps holds the collaborators of a Resolver.
type Deps struct {
	Users         auth.UserRepository
	Management    auth.ManagementRepository
	Organizations organization.Repository
	Tasks         task.Repository
	Tokens        *auth.TokenService
	Hasher        *auth.Hasher
	Events        events.Publisher // nil means events.Noop
	Logger        *logging.Logger
}

// Resolver executes queries and mutations on behalf of the caller in ctx.
// It is safe for concurrent use.
type Resolver struct {
	users      auth.UserRepository
	management auth.ManagementRepository
	orgs       organization.Repository
	tasks      task.Repository
	tokens     *auth.TokenService
	hasher     *auth.Hasher
	events     events.Publisher
	logger     *logging.Logger

	dummyMu   sync.Mutex
	dummyHash string
}

// New creates a Resolver.
func New(deps Deps) *Resolver {
	pub := deps.Events
	if pub == nil {
		pub = events.Noop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	r := &Resolver{
		users:      deps.Users,
		management: deps.Management,
		orgs:       deps.Organizations,
		tasks:      deps.Tasks,
		tokens:     deps.Tokens,
		hasher:     deps.Hasher,
		events:     pub,
		logger:     logger.With("component", "resolver"),
	}
	if r.hasher != nil {
		if _, err := r.loginDummyHash(context.Background()); err != nil {
			r.logger.Warn("hashing login timing password failed", "error", err)
		}
	}
	return r
}

// AuthPayload is returned by login and createUser.
type AuthPayload struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

// caller returns the identity in ctx, or ErrUnauthorized for anonymous.
func caller(ctx context.Context) (*auth.Identity, error) {
	id := auth.IdentityFromContext(ctx)
	if id == nil {
		return nil, auth.ErrUnauthorized
	}
	return id, nil
}

// mapNotFound converts a repository not-found sentinel into ErrNotFound,
// keeping the original in the chain, and wraps anything else with op.
func mapNotFound(err, sentinel error, op string) error {
	if errors.Is(err, sentinel) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// publish sends a change event, logging rather than returning failures.
// It runs detached from ctx cancellation since the write has committed.
func (r *Resolver) publish(ctx context.Context, e events.Event) {
	if err := r.events.Publish(context.WithoutCancel(ctx), e); err != nil {
		r.logger.Warn("publishing change event failed",
			"entity", e.Entity,
			"type", e.Type,
			"id", e.ID,
			"error", err,
		)
	}
}

// identityFor builds the token identity of u, loading the managed-user set
// for Managers.
func (r *Resolver) identityFor(ctx context.Context, u *auth.User) (*auth.Identity, error) {
	var managed []string
	if u.Role == auth.RoleManager {
		ids, err := r.management.GetManagedUserIDs(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("loading managed users: %w", err)
		}
		managed = ids
	}
	return auth.IdentityFor(u, managed), nil
}
