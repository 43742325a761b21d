package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/org/passvault/pkg/models"
)

// ExportHandler handles POST /vault/export
func (s *Server) ExportHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	var req struct {
		ExportPassword string `json:"exportPassword"`
	}
	if err := decodeJSON(r, &req); err != nil || req.ExportPassword == "" {
		writeError(w, http.StatusBadRequest, "exportPassword is required")
		return
	}

	env, err := s.codec.Export(r.Context(), sess.UserID, req.ExportPassword)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	filename := fmt.Sprintf("vault-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, env)
}

// ImportHandler handles POST /vault/import
func (s *Server) ImportHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	var req struct {
		EncryptedData  models.EncryptedEnvelope `json:"encryptedData"`
		ImportPassword string                   `json:"importPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ImportPassword == "" {
		writeError(w, http.StatusBadRequest, "importPassword is required")
		return
	}

	result, err := s.codec.Import(r.Context(), sess.UserID, &req.EncryptedData, req.ImportPassword)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
