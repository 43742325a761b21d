package api

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/org/passvault/internal/session"
	"github.com/org/passvault/internal/snapshot"
	"github.com/org/passvault/internal/storage"
	"github.com/org/passvault/internal/vault"
	"github.com/org/passvault/internal/webdav"
)

// Config holds server configuration.
type Config struct {
	ListenAddr  string
	TLSCertFile string
	TLSKeyFile  string
	SessionTTL  time.Duration
	DevLogin    bool
	UseHKDF     bool
}

// Server is the API server.
type Server struct {
	store    storage.Backend
	sessions *session.Gate
	vault    *vault.Store
	codec    *snapshot.Codec
	backup   *webdav.Service
	cfg      Config
	httpSrv  *http.Server
}

// NewServer creates a fully wired Server.
func NewServer(store storage.Backend, cfg Config) *Server {
	gate := session.NewGate(store, cfg.SessionTTL)
	vaultStore := vault.NewStore(store, cfg.UseHKDF)
	codec := snapshot.NewCodec(vaultStore)
	backupSvc := webdav.NewService(store, vaultStore, codec, nil)

	return &Server{
		store:    store,
		sessions: gate,
		vault:    vaultStore,
		codec:    codec,
		backup:   backupSvc,
		cfg:      cfg,
	}
}

// Sessions exposes the session gate so an external login service (or the dev
// login handler) can mint sessions.
func (s *Server) Sessions() *session.Gate {
	return s.sessions
}

// BuildRouter wires up all routes and returns a chi router.
func (s *Server) BuildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(metricsMiddleware)
	r.Use(newRateLimiter(100, 200).middleware)
	r.Use(accessLogMiddleware)

	// Prometheus metrics (unauthenticated)
	r.Handle("/metrics", MetricsHandler())

	// Public routes (no auth required)
	r.Group(func(r chi.Router) {
		r.Get("/healthz", s.HealthHandler)
		r.Post("/auth/login", s.DevLoginHandler)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(s.sessions))

		r.Get("/auth/me", s.MeHandler)
		r.Post("/auth/logout", s.LogoutHandler)

		r.Get("/credentials", s.CredentialListHandler)
		r.Post("/credentials", s.CredentialCreateHandler)
		r.Get("/credentials/{id}", s.CredentialGetHandler)
		r.Put("/credentials/{id}", s.CredentialUpdateHandler)
		r.Delete("/credentials/{id}", s.CredentialDeleteHandler)
		r.Get("/credentials/{id}/reveal", s.CredentialRevealHandler)

		r.Post("/vault/export", s.ExportHandler)
		r.Post("/vault/import", s.ImportHandler)

		r.Get("/webdav/config", s.WebDAVConfigGetHandler)
		r.Post("/webdav/config", s.WebDAVConfigSetHandler)
		r.Post("/webdav/backup", s.WebDAVBackupHandler)
		r.Post("/webdav/restore", s.WebDAVRestoreHandler)
		r.Post("/webdav/delete", s.WebDAVDeleteHandler)
		r.Post("/webdav/list", s.WebDAVListHandler)

		r.Get("/categories", s.CategoryListHandler)
		r.Post("/categories", s.CategoryAddHandler)
		r.Delete("/categories/{name}", s.CategoryRemoveHandler)

		r.Get("/generate", s.GenerateHandler)
	})

	return r
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	handler := s.BuildRouter()

	s.httpSrv = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "" {
		tlsCfg := &tls.Config{
			MinVersion: tls.VersionTLS12,
			CurvePreferences: []tls.CurveID{
				tls.CurveP256,
				tls.X25519,
			},
		}
		s.httpSrv.TLSConfig = tlsCfg
		log.Info().Str("addr", s.cfg.ListenAddr).Msg("starting HTTPS server")
		return s.httpSrv.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	}

	log.Info().Str("addr", s.cfg.ListenAddr).Msg("starting HTTP server")
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
