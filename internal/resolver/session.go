package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/taskhub-core/internal/auth"
)

// dummyPassword is hashed at construction and compared against when the username is
// unknown, so a failed login costs the same whether or not the account
// exists.
const dummyPassword = "taskhub-login-timing"

// Login checks a username and password and returns a session token.
// Unknown users and wrong passwords both fail with ErrInvalidCredentials.
func (r *Resolver) Login(ctx context.Context, username, password string) (*AuthPayload, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	u, err := r.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) {
			return nil, fmt.Errorf("getting user: %w", err)
		}
		if err := r.burnVerify(ctx, password); err != nil {
			return nil, err
		}
		return nil, auth.ErrInvalidCredentials
	}

	ok, err := r.hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		r.logger.Info("login failed", "username", username)
		return nil, auth.ErrInvalidCredentials
	}

	id, err := r.identityFor(ctx, u)
	if err != nil {
		return nil, err
	}
	token, err := r.tokens.Issue(id)
	if err != nil {
		return nil, err
	}

	r.logger.Info("login succeeded", "user_id", u.ID, "role", u.Role)
	return &AuthPayload{Token: token, User: u}, nil
}

// Me returns the caller's own account.
func (r *Resolver) Me(ctx context.Context) (*auth.User, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	u, err := r.users.GetByID(ctx, id.ID)
	if err != nil {
		return nil, mapNotFound(err, auth.ErrUserNotFound, "getting user")
	}
	return u, nil
}

// burnVerify spends one bcrypt comparison on a password whose account does
// not exist.
func (r *Resolver) burnVerify(ctx context.Context, password string) error {
	hash, err := r.loginDummyHash(ctx)
	if err != nil {
		return fmt.Errorf("hashing login timing password: %w", err)
	}
	if _, err := r.hasher.Verify(ctx, password, hash); err != nil {
		return fmt.Errorf("verifying password: %w", err)
	}
	return nil
}

// loginDummyHash returns the hash of dummyPassword, computing it on first
// use. A failed attempt is not cached, so the next call retries. The hash is
// computed detached from ctx cancellation.
func (r *Resolver) loginDummyHash(ctx context.Context) (string, error) {
	r.dummyMu.Lock()
	defer r.dummyMu.Unlock()

	if r.dummyHash != "" {
		return r.dummyHash, nil
	}
	hash, err := r.hasher.Hash(context.WithoutCancel(ctx), dummyPassword)
	if err != nil {
		return "", err
	}
	r.dummyHash = hash
	return hash, nil
}
