package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/org/passvault/pkg/models"
)

// CredentialListHandler handles GET /credentials
func (s *Server) CredentialListHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	records, err := s.vault.List(r.Context(), sess.UserID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credentials": records})
}

// CredentialCreateHandler handles POST /credentials
func (s *Server) CredentialCreateHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	var fields models.CredentialFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.vault.Create(r.Context(), sess.UserID, fields)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// CredentialGetHandler handles GET /credentials/{id}
func (s *Server) CredentialGetHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	rec, err := s.vault.Get(r.Context(), sess.UserID, id)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Masked())
}

// CredentialRevealHandler handles GET /credentials/{id}/reveal
func (s *Server) CredentialRevealHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	password, err := s.vault.Reveal(r.Context(), sess.UserID, id)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"password": password})
}

// CredentialUpdateHandler handles PUT /credentials/{id}
func (s *Server) CredentialUpdateHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	var fields models.CredentialFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.vault.Update(r.Context(), sess.UserID, id, fields)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CredentialDeleteHandler handles DELETE /credentials/{id}.
// Deleting an unknown id succeeds: the delete is idempotent by contract.
func (s *Server) CredentialDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.vault.Delete(r.Context(), sess.UserID, id); err != nil {
		writeMappedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
