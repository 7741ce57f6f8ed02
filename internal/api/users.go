package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/taskhub-core/internal/resolver"
)

type setManagedUsersRequest struct {
	UserIDs []string `json:"user_ids"`
}

// handleListUsers returns all user accounts.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.resolver.Users(r.Context())
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.resolver.User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleCreateUser creates an account and returns it with a token for it.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req resolver.CreateUserInput
	if !decodeJSON(w, r, &req) {
		return
	}

	payload, err := s.resolver.CreateUser(r.Context(), req)
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, payload)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req resolver.UpdateUserInput
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.resolver.UpdateUser(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.resolver.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetManagedUsers replaces a Manager's managed-user set.
func (s *Server) handleSetManagedUsers(w http.ResponseWriter, r *http.Request) {
	var req setManagedUsersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	managerID := chi.URLParam(r, "id")
	ids, err := s.resolver.SetManagedUsers(r.Context(), managerID, req.UserIDs)
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"manager_id": managerID,
		"user_ids":   ids,
	})
}
