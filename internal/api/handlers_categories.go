package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CategoryListHandler handles GET /categories
func (s *Server) CategoryListHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	categories, err := s.vault.Categories(r.Context(), sess.UserID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// CategoryAddHandler handles POST /categories
func (s *Server) CategoryAddHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	categories, err := s.vault.AddCategory(r.Context(), sess.UserID, req.Name)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// CategoryRemoveHandler handles DELETE /categories/{name}
func (s *Server) CategoryRemoveHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())
	name := chi.URLParam(r, "name")

	categories, err := s.vault.RemoveCategory(r.Context(), sess.UserID, name)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}
