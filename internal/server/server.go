package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vught/pacekeeper/internal/plangen"
	"github.com/vught/pacekeeper/internal/storage"
)

// Identity is the resolved caller identity. On a tailnet it comes from
// WhoIs; the local dev fallback uses a fixed login.
type Identity struct {
	Login       string
	DisplayName string
}

// IdentityFunc resolves the caller identity for a request.
type IdentityFunc func(r *http.Request) Identity

// LocalIdentity is the dev fallback used when no tailnet is present.
func LocalIdentity(*http.Request) Identity {
	return Identity{Login: "local", DisplayName: "Local User"}
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	registry *plangen.Registry
	identity IdentityFunc
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, registry *plangen.Registry, identity IdentityFunc, apiKey string, log *slog.Logger) *Server {
	if identity == nil {
		identity = LocalIdentity
	}
	s := &Server{
		db:       db,
		registry: registry,
		identity: identity,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// MountMCP attaches the MCP transport handler under /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}

func (s *Server) routes() {
	s.router.Use(ResolveIdentity(s.identity))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/gpx", s.handleIngestGPX)
	})

	// Zone and plan API (no auth — tsnet handles access)
	s.router.Post("/api/v1/zones/calculate", s.handleCalculateZones)
	s.router.Get("/api/v1/zones", s.handleGetZones)
	s.router.Get("/api/v1/methodologies", s.handleListMethodologies)

	s.router.Post("/api/v1/plans/generate", s.handleGeneratePlan)
	s.router.Get("/api/v1/plans", s.handleListPlans)
	s.router.Get("/api/v1/plans/{id}", s.handleGetPlan)

	s.router.Post("/api/v1/workouts", s.handleCreateWorkout)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Post("/api/v1/workouts/{id}/match", s.handleMatchWorkout)
	s.router.Get("/api/v1/workouts/{id}/candidates", s.handleMatchCandidates)

	s.router.Get("/api/v1/load", s.handleTrainingLoad)
	s.router.Get("/api/v1/records", s.handleRecords)
	s.router.Get("/api/v1/analytics", s.handleAnalytics)
}
