package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/taskhub-core/internal/resolver"
)

// handleListTasks returns the tasks visible to the caller.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.resolver.Tasks(r.Context())
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"count": len(tasks),
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.resolver.Task(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req resolver.CreateTaskInput
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := s.resolver.CreateTask(r.Context(), req)
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req resolver.UpdateTaskInput
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := s.resolver.UpdateTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.resolver.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeResolverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
