// Package mcp exposes zone calculation, plan generation, and training
// history to AI assistants over the Model Context Protocol.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vught/pacekeeper/internal/plangen"
	"github.com/vught/pacekeeper/internal/storage"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(db *storage.DB, registry *plangen.Registry, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("PaceKeeper", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("PaceKeeper running data server. Calculate training pace zones, preview and inspect training plans, and query completed runs, training load, and personal records. All data is scoped to the authenticated user."),
	)

	h := &handlers{db: db, registry: registry, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolCalculatePaceZones, Handler: h.calculatePaceZones},
		server.ServerTool{Tool: toolListMethodologies, Handler: h.listMethodologies},
		server.ServerTool{Tool: toolPreviewTrainingPlan, Handler: h.previewTrainingPlan},
		server.ServerTool{Tool: toolGetTrainingPlan, Handler: h.getTrainingPlan},
		server.ServerTool{Tool: toolGetCompletedWorkouts, Handler: h.getCompletedWorkouts},
		server.ServerTool{Tool: toolGetTrainingLoad, Handler: h.getTrainingLoad},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resPaceZones, Handler: h.paceZones},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resTrainingLoad, Handler: h.trainingLoad},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	db       *storage.DB
	registry *plangen.Registry
	log      *slog.Logger
}

// --- Resource definitions ---

var resPaceZones = mcp.NewResource(
	"pacekeeper://pace_zones",
	"Pace Zones",
	mcp.WithResourceDescription("The user's current training pace zones, slowest to fastest"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"pacekeeper://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Completed runs from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resTrainingLoad = mcp.NewResource(
	"pacekeeper://training_load",
	"Training Load",
	mcp.WithResourceDescription("Daily training stress, fitness (CTL), fatigue (ATL), and form (TSB) for the last 42 days"),
	mcp.WithMIMEType("application/json"),
)
