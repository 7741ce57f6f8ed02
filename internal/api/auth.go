package api

import (
	"net/http"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin exchanges a username and password for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payload, err := s.resolver.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleMe returns the caller's account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.resolver.Me(r.Context())
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
