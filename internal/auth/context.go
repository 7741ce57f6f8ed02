package auth

import "context"

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the caller identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller identity, or nil for anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity) //nolint:errcheck // type assertion, not error
	return id
}
