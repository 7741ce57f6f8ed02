package auth

import (
	"errors"
	"regexp"
	"slices"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleUser owns tasks and reaches nothing else.
	RoleUser Role = "User"

	// RoleManager reaches the tasks of its managed users inside its own
	// organization.
	RoleManager Role = "Manager"

	// RoleAdmin manages organizations and users. Task listings stay scoped
	// to the Admin's own organization.
	RoleAdmin Role = "Admin"
)

// ValidRoles is the closed set of roles.
var ValidRoles = []Role{RoleUser, RoleManager, RoleAdmin}

// IsValidRole returns true if r is one of ValidRoles.
func IsValidRole(r Role) bool {
	return slices.Contains(ValidRoles, r)
}

// User represents an account.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"` // never serialised
	Role           Role      `json:"role"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Identity is the authenticated caller, as carried in a session token.
// A nil *Identity is the anonymous caller.
type Identity struct {
	ID             string   `json:"id"`
	Role           Role     `json:"role"`
	OrganizationID string   `json:"organization_id,omitempty"`
	ManagedUserIDs []string `json:"managed_user_ids,omitempty"`
}

// IdentityFor projects a user and its managed-user set into an Identity.
func IdentityFor(u *User, managedUserIDs []string) *Identity {
	return &Identity{
		ID:             u.ID,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		ManagedUserIDs: managedUserIDs,
	}
}

// Manages returns true if userID is in the identity's managed-user set.
func (id *Identity) Manages(userID string) bool {
	return id != nil && slices.Contains(id.ManagedUserIDs, userID)
}

// Sentinel errors for auth operations.
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrHashingFailure     = errors.New("password hashing failed")
	ErrTokenIssuance      = errors.New("token issuance failed")
	ErrUnauthorized       = errors.New("not authorised")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrUserOwnsTasks      = errors.New("user still owns tasks")
	ErrMissingSecret      = errors.New("token signing secret is required")
)
