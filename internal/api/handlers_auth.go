package api

import (
	"net/http"
	"regexp"

	"github.com/org/passvault/pkg/models"
)

// usernamePattern bounds dev-login usernames. The username becomes part of
// the userId, and the userId is interpolated into storage keys, so delimiter
// characters like ':' would let one login alias another user's namespace.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// DevLoginHandler handles POST /auth/login. It exists for local development
// only: production deployments mint sessions through the external OAuth
// service and keep dev_login off, which turns this route into a 404.
func (s *Server) DevLoginHandler(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.DevLogin {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if !usernamePattern.MatchString(req.Username) {
		writeError(w, http.StatusBadRequest, "username may only contain letters, digits, '.', '_' and '-'")
		return
	}

	token, err := s.sessions.Create(r.Context(), models.SessionRecord{
		UserID:   "dev-" + req.Username,
		Username: req.Username,
		Nickname: req.Username,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// MeHandler handles GET /auth/me
func (s *Server) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFromCtx(r.Context()))
}

// LogoutHandler handles POST /auth/logout
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Evict(r.Context(), bearerToken(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loggedOut": true})
}
