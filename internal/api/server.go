// Package api exposes the HTTP surface for document upload, structured
// page retrieval, and interactive reading sessions.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hmercer/tapread/internal/cache"
	"github.com/hmercer/tapread/internal/config"
	"github.com/hmercer/tapread/internal/docstore"
	"github.com/hmercer/tapread/internal/lookup"
	"github.com/hmercer/tapread/internal/pipeline"
	"github.com/hmercer/tapread/internal/session"
)

// Server is the HTTP API server.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        *docstore.Store
	sessions     *session.Manager
	cache        *cache.Cache
	governor     *cache.Governor
	provider     lookup.Provider
	stats        *lookup.Stats
	log          *slog.Logger
	cfg          config.Config
}

// Deps carries the server's collaborators.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Store        *docstore.Store
	Sessions     *session.Manager
	Cache        *cache.Cache
	Governor     *cache.Governor
	Provider     lookup.Provider
	Stats        *lookup.Stats
	Logger       *slog.Logger
	Config       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(d Deps) *Server {
	s := &Server{
		orchestrator: d.Orchestrator,
		store:        d.Store,
		sessions:     d.Sessions,
		cache:        d.Cache,
		governor:     d.Governor,
		provider:     d.Provider,
		stats:        d.Stats,
		log:          d.Logger,
		cfg:          d.Config,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents", s.handleUpload)
		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Get("/api/documents/{docID}/pages/{page}", s.handleGetPage)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Post("/api/sessions", s.handleCreateSession)
		r.Get("/api/sessions/{sessionID}", s.handleSessionState)
		r.Post("/api/sessions/{sessionID}/tap", s.handleTap)
		r.Post("/api/sessions/{sessionID}/press", s.handlePress)
		r.Post("/api/sessions/{sessionID}/detail", s.handleDetail)
		r.Post("/api/sessions/{sessionID}/dismiss", s.handleDismiss)
		r.Delete("/api/sessions/{sessionID}", s.handleDeleteSession)

		r.Get("/api/stats/lookup", s.handleLookupStats)
		r.Post("/api/memory/pressure", s.handleMemoryPressure)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
