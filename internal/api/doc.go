// Package api provides the HTTP JSON API for TaskHub Core.
//
// Handlers decode requests, call the resolver with the caller's identity
// in the request context, and map resolver errors onto HTTP statuses.
// The identity comes from an optional bearer token; a missing or invalid
// token leaves the request anonymous and the resolver decides what an
// anonymous caller may do.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
