// Package events publishes change notifications after successful mutations.
//
// Publishing is best-effort. A Publisher error is for the caller to log;
// it never undoes or fails the write that triggered it.
package events
