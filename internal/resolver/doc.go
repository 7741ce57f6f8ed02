// Package resolver implements the TaskHub query and mutation operations.
//
// Every operation reads the caller from the request context
// (auth.IdentityFromContext) and consults the auth decision table before
// touching storage for a write. Results are typed errors:
//   - auth.ErrUnauthorized when the decision table denies the caller
//   - ErrNotFound when the addressed entity does not exist
//   - ErrInvalidInput when the request itself is malformed
//   - auth.ErrInvalidCredentials and auth.ErrUsernameExists as named
//
// Ordering: anonymous callers are rejected before any storage access.
// Organization and user operations are admin-only by role, so they are
// authorised before the lookup. Task read, update and delete need the
// stored owner, so the task is fetched first (ErrNotFound) and then
// authorised against its existing owner. Task create is authorised against
// the requested owner.
//
// Successful mutations publish a change event; publish failures are logged
// and do not fail the operation.
package resolver
