package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nerrad567/taskhub-core/internal/auth"
	"github.com/nerrad567/taskhub-core/internal/events"
)

// CreateUserInput is the input of CreateUser. Role defaults to User.
type CreateUserInput struct {
	Username       string    `json:"username"`
	Password       string    `json:"password"`
	Role           auth.Role `json:"role"`
	OrganizationID string    `json:"organization_id"`
}

// UpdateUserInput is the input of UpdateUser. Nil fields are unchanged;
// an empty OrganizationID removes the user from its organization.
type UpdateUserInput struct {
	Username       *string    `json:"username,omitempty"`
	Password       *string    `json:"password,omitempty"`
	Role           *auth.Role `json:"role,omitempty"`
	OrganizationID *string    `json:"organization_id,omitempty"`
}

// Users lists every user. Admin only.
func (r *Resolver) Users(ctx context.Context) ([]auth.User, error) {
	if _, err := auth.ListScope(auth.IdentityFromContext(ctx), auth.ResourceUser); err != nil {
		return nil, err
	}

	users, err := r.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// User returns one user. Admin only.
func (r *Resolver) User(ctx context.Context, userID string) (*auth.User, error) {
	if err := auth.Authorize(auth.IdentityFromContext(ctx), auth.ResourceUser, auth.ActionRead, ""); err != nil {
		return nil, err
	}

	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, auth.ErrUserNotFound, "getting user")
	}
	return u, nil
}

// CreateUser creates an account and returns it with a session token for
// it. Admin only.
func (r *Resolver) CreateUser(ctx context.Context, in CreateUserInput) (*AuthPayload, error) {
	id := auth.IdentityFromContext(ctx)
	if err := auth.Authorize(id, auth.ResourceUser, auth.ActionCreate, ""); err != nil {
		return nil, err
	}

	username, err := normaliseUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = auth.RoleUser
	}
	if !auth.IsValidRole(role) {
		return nil, invalid("unknown role %q", role)
	}
	orgID := strings.TrimSpace(in.OrganizationID)
	if orgID != "" {
		if err := r.requireOrganization(ctx, orgID); err != nil {
			return nil, err
		}
	}

	hash, err := r.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &auth.User{
		Username:       username,
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: orgID,
	}
	if err := r.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := r.tokens.Issue(auth.IdentityFor(u, nil))
	if err != nil {
		return nil, err
	}

	r.logger.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role, "created_by", id.ID)
	r.publish(ctx, events.Event{
		Type:           events.TypeCreated,
		Entity:         events.EntityUser,
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		ActorID:        id.ID,
	})
	return &AuthPayload{Token: token, User: u}, nil
}

// UpdateUser changes the supplied fields of a user, re-hashing a new
// password. All fields are written together. Leaving the Manager role clears
// the managed-user set, and moving to another organization takes the user's
// tasks along and drops their management links. Admin only.
func (r *Resolver) UpdateUser(ctx context.Context, userID string, in UpdateUserInput) (*auth.User, error) { //nolint:gocognit,gocyclo // field patching with per-field validation
	id := auth.IdentityFromContext(ctx)
	if err := auth.Authorize(id, auth.ResourceUser, auth.ActionUpdate, ""); err != nil {
		return nil, err
	}

	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, auth.ErrUserNotFound, "getting user")
	}
	if in.Username != nil {
		if u.Username, err = normaliseUsername(*in.Username); err != nil {
			return nil, err
		}
	}
	if in.Role != nil {
		if !auth.IsValidRole(*in.Role) {
			return nil, invalid("unknown role %q", *in.Role)
		}
		u.Role = *in.Role
	}
	if in.OrganizationID != nil {
		orgID := strings.TrimSpace(*in.OrganizationID)
		if orgID != "" {
			if err := r.requireOrganization(ctx, orgID); err != nil {
				return nil, err
			}
		}
		u.OrganizationID = orgID
	}
	var newHash string
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		if newHash, err = r.hasher.Hash(ctx, *in.Password); err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	}

	if newHash != "" {
		u.PasswordHash = newHash
	}

	if err := r.users.Update(ctx, u); err != nil {
		if errors.Is(err, auth.ErrUserOwnsTasks) {
			return nil, invalid("user %q still owns tasks and cannot leave its organization", u.ID)
		}
		return nil, mapNotFound(err, auth.ErrUserNotFound, "updating user")
	}

	r.logger.Info("user updated", "user_id", u.ID, "updated_by", id.ID, "password_changed", newHash != "")
	r.publish(ctx, events.Event{
		Type:           events.TypeUpdated,
		Entity:         events.EntityUser,
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		ActorID:        id.ID,
	})
	return u, nil
}

// DeleteUser removes a user, its tasks and its management assignments.
// Admin only.
func (r *Resolver) DeleteUser(ctx context.Context, userID string) error {
	id := auth.IdentityFromContext(ctx)
	if err := auth.Authorize(id, auth.ResourceUser, auth.ActionDelete, ""); err != nil {
		return err
	}

	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return mapNotFound(err, auth.ErrUserNotFound, "getting user")
	}
	if err := r.users.Delete(ctx, userID); err != nil {
		return mapNotFound(err, auth.ErrUserNotFound, "deleting user")
	}

	r.logger.Info("user deleted", "user_id", userID, "deleted_by", id.ID)
	r.publish(ctx, events.Event{
		Type:           events.TypeDeleted,
		Entity:         events.EntityUser,
		ID:             userID,
		OrganizationID: u.OrganizationID,
		ActorID:        id.ID,
	})
	return nil
}

// SetManagedUsers replaces the managed-user set of a Manager and returns
// the stored set. The change reaches the Manager's session at its next
// login. Admin only.
func (r *Resolver) SetManagedUsers(ctx context.Context, managerID string, userIDs []string) ([]string, error) {
	id := auth.IdentityFromContext(ctx)
	if err := auth.Authorize(id, auth.ResourceUser, auth.ActionUpdate, ""); err != nil {
		return nil, err
	}

	manager, err := r.users.GetByID(ctx, managerID)
	if err != nil {
		return nil, mapNotFound(err, auth.ErrUserNotFound, "getting manager")
	}
	if manager.Role != auth.RoleManager {
		return nil, invalid("user %q is not a Manager", managerID)
	}
	if manager.OrganizationID == "" && len(userIDs) > 0 {
		return nil, invalid("Manager %q has no organization", managerID)
	}

	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, userID := range ids {
		if userID == managerID {
			return nil, invalid("a Manager cannot manage itself")
		}
		u, err := r.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return nil, invalid("unknown user %q", userID)
			}
			return nil, fmt.Errorf("getting user: %w", err)
		}
		if u.OrganizationID != manager.OrganizationID {
			return nil, invalid("user %q is not in the Manager's organization", userID)
		}
	}

	if err := r.management.SetManagedUsers(ctx, managerID, ids); err != nil {
		return nil, fmt.Errorf("setting managed users: %w", err)
	}
	stored, err := r.management.GetManagedUserIDs(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("reading managed users: %w", err)
	}

	r.logger.Info("managed users updated", "manager_id", managerID, "count", len(stored), "updated_by", id.ID)
	r.publish(ctx, events.Event{
		Type:           events.TypeManagedUsersUpdated,
		Entity:         events.EntityUser,
		ID:             managerID,
		OrganizationID: manager.OrganizationID,
		ActorID:        id.ID,
	})
	return stored, nil
}

func normaliseUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", invalid("username is required")
	}
	if !auth.IsValidUsername(username) {
		return "", invalid("username must be 1-64 letters, digits, dots, hyphens or underscores")
	}
	return username, nil
}

func validatePassword(password string) error {
	if password == "" {
		return invalid("password is required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return invalid("password must be at most %d bytes", auth.MaxPasswordBytes)
	}
	return nil
}
