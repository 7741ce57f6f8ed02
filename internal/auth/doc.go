// Package auth provides authentication and authorisation for TaskHub Core.
//
// It implements a three-tier role model (User, Manager, Admin) with:
//   - bcrypt password hashing behind a bounded-concurrency Hasher
//   - stateless HS256 session tokens carrying the caller Identity
//   - a static decision table over resource, action and role
//   - list scoping filters for storage queries
//
// Admin is unrestricted except that task listings are scoped to the Admin's
// own organization. A Manager reaches only the tasks of the users assigned
// to it via user_management; a User reaches only its own tasks. Every
// denial is ErrUnauthorized, which callers keep distinct from not-found.
//
// Nothing in the credential and decision paths logs; errors are returned to
// the caller unchanged.
package auth
