package api

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"strconv"
)

// HealthHandler handles GET /healthz
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": "1.0.0"})
}

const (
	generateAlnum   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	generateSymbols = "!@#$%^&*()-_=+[]{};:,.<>?"
)

// GenerateHandler handles GET /generate. Stateless: nothing generated here is
// stored or logged.
func (s *Server) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	length := 16
	if v := r.URL.Query().Get("length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 4 || n > 128 {
			writeError(w, http.StatusBadRequest, "length must be between 4 and 128")
			return
		}
		length = n
	}

	alphabet := generateAlnum
	if r.URL.Query().Get("symbols") != "false" {
		alphabet += generateSymbols
	}

	password, err := randomString(alphabet, length)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"password": password})
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
