package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type organizationRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.resolver.Organizations(r.Context())
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"organizations": orgs,
		"count":         len(orgs),
	})
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.resolver.Organization(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := s.resolver.CreateOrganization(r.Context(), req.Name)
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

func (s *Server) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := s.resolver.UpdateOrganization(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	if err := s.resolver.DeleteOrganization(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
