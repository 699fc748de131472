// Package server exposes documents and template generation over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/livetemplate/mailcraft"
	"github.com/livetemplate/mailcraft/internal/config"
	"github.com/livetemplate/mailcraft/internal/generate"
	"github.com/livetemplate/mailcraft/internal/render"
	"github.com/livetemplate/mailcraft/internal/store"
)

// Server is the mailcraft HTTP server.
type Server struct {
	config    *config.Config
	docs      *store.Documents
	generator *generate.Generator
	renderer  *render.Renderer
	hub       *Hub
	mux       *http.ServeMux
	watcher   *generate.CatalogWatcher
}

// New creates a server over docs and gen.
func New(cfg *config.Config, docs *store.Documents, gen *generate.Generator) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:    cfg,
		docs:      docs,
		generator: gen,
		renderer:  renderer,
		hub:       NewHub(cfg.API.GetCORSOrigins(), cfg.Server.Debug),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/ai/generate-template", s.handleGenerate)

	s.mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	s.mux.HandleFunc("POST /api/documents", s.handleCreateDocument)
	s.mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	s.mux.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)
	s.mux.HandleFunc("GET /api/documents/{id}/export.html", s.handleExport)
	s.mux.HandleFunc("POST /api/documents/{id}/blocks", s.handleInsertBlock)
	s.mux.HandleFunc("POST /api/documents/{id}/drop", s.handleDrop)
	s.mux.HandleFunc("PATCH /api/documents/{id}/blocks/{blockID}", s.handlePatchBlock)
	s.mux.HandleFunc("DELETE /api/documents/{id}/blocks/{blockID}", s.handleRemoveBlock)
	s.mux.HandleFunc("PUT /api/documents/{id}/blocks/{blockID}/fields/{field}", s.handleSetField)
}

// Handler returns the full handler with middleware. API routes get CORS,
// auth and rate limiting; everything gets security headers and gzip. The
// rate limiter's cleanup goroutine stops when ctx is cancelled.
func (s *Server) Handler(ctx context.Context) http.Handler {
	api := s.config.API
	rateLimit, _ := RateLimitMiddleware(ctx, api.GetRateLimitRPS(), api.GetRateLimitBurst(), api.GetMaxTrackedIPs())

	var authCfg *config.AuthConfig
	if api != nil {
		authCfg = api.Auth
	}

	root := http.NewServeMux()
	root.Handle("/api/", Chain(s.mux,
		CORSMiddleware(api.GetCORSOrigins(), authCfg.GetHeaderName()),
		rateLimit,
		AuthMiddleware(authCfg),
	))
	root.Handle("GET /ws", s.hub)
	root.HandleFunc("GET /healthz", s.handleHealth)

	return Chain(root,
		LoggingMiddleware(s.config.Server.Debug),
		SecurityHeadersMiddleware(),
		CompressionMiddleware(),
	)
}

// ServeHTTP serves the routes without middleware.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// EnableWatch hot-reloads the catalog file at path.
func (s *Server) EnableWatch(path string) error {
	w, err := generate.NewCatalogWatcher(path, s.generator, s.config.Server.Debug)
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	s.watcher = w
	s.watcher.Start()
	log.Printf("[Watch] Catalog watcher started for %s", path)
	return nil
}

// Close stops the watcher and disconnects WebSocket clients.
func (s *Server) Close() error {
	s.hub.Close()
	if s.watcher != nil {
		return s.watcher.Stop()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": mailcraft.Version,
	})
}
