// Package task holds the Task entity of TaskHub Core and its SQLite
// persistence.
//
// A task is owned by one user and belongs to exactly one organization.
// Listing goes through Find with a Filter derived from the caller's
// authorisation scope, so restriction happens in the query rather than
// after loading rows.
package task
