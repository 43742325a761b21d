package api

import (
	"net/http"

	"github.com/org/passvault/pkg/models"
)

// WebDAVConfigGetHandler handles GET /webdav/config. The stored secret never
// leaves the server; the response carries only hasPassword.
func (s *Server) WebDAVConfigGetHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	cfg, err := s.backup.Config(r.Context(), sess.UserID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":         cfg.URL,
		"username":    cfg.Username,
		"hasPassword": cfg.Password != "",
	})
}

// WebDAVConfigSetHandler handles POST /webdav/config
func (s *Server) WebDAVConfigSetHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	var cfg models.WebDAVConfig
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.backup.SaveConfig(r.Context(), sess.UserID, cfg); err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true})
}

// WebDAVBackupHandler handles POST /webdav/backup
func (s *Server) WebDAVBackupHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	var req struct {
		Filename       string `json:"filename"`
		BackupPassword string `json:"backupPassword"`
	}
	if err := decodeJSON(r, &req); err != nil || req.BackupPassword == "" {
		writeError(w, http.StatusBadRequest, "backupPassword is required")
		return
	}

	filename, err := s.backup.Backup(r.Context(), sess.UserID, req.Filename, req.BackupPassword)
	observeBackupOp("backup", err)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filename": filename})
}

// WebDAVRestoreHandler handles POST /webdav/restore
func (s *Server) WebDAVRestoreHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	var req struct {
		Filename        string `json:"filename"`
		RestorePassword string `json:"restorePassword"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Filename == "" || req.RestorePassword == "" {
		writeError(w, http.StatusBadRequest, "filename and restorePassword are required")
		return
	}

	result, err := s.backup.Restore(r.Context(), sess.UserID, req.Filename, req.RestorePassword)
	observeBackupOp("restore", err)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// WebDAVDeleteHandler handles POST /webdav/delete
func (s *Server) WebDAVDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	var req struct {
		Filename string `json:"filename"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	err := s.backup.Delete(r.Context(), sess.UserID, req.Filename)
	observeBackupOp("delete", err)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// WebDAVListHandler handles POST /webdav/list
func (s *Server) WebDAVListHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromCtx(r.Context())

	files, err := s.backup.List(r.Context(), sess.UserID)
	observeBackupOp("list", err)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}
