package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/org/passvault/internal/snapshot"
	"github.com/org/passvault/internal/storage"
	"github.com/org/passvault/internal/vault"
	"github.com/org/passvault/internal/webdav"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}

// writeMappedError translates domain errors into the response taxonomy.
// Anything unrecognized becomes a generic 500 with no internal detail.
func writeMappedError(w http.ResponseWriter, err error) {
	var statusErr *webdav.StatusError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, vault.ErrInvalid), errors.Is(err, webdav.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, snapshot.ErrDecryptFailed):
		writeError(w, http.StatusBadRequest, snapshot.ErrDecryptFailed.Error())
	case errors.Is(err, webdav.ErrNotConfigured):
		writeError(w, http.StatusBadRequest, webdav.ErrNotConfigured.Error())
	case errors.As(err, &statusErr):
		writeError(w, http.StatusInternalServerError, statusErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
