// Package mcp exposes fitness profiles, workouts and session history to
// MCP clients.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const auth0IDKey contextKey = iota

// Auth0IDFromContext returns the user injected by the transport layer, or
// "" when none was set.
func Auth0IDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(auth0IDKey).(string); ok {
		return id
	}
	return ""
}

// WithAuth0ID returns a context scoped to the given user. Tools use it when
// the caller omits auth0_id.
func WithAuth0ID(ctx context.Context, auth0ID string) context.Context {
	return context.WithValue(ctx, auth0IDKey, auth0ID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("fitcoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Fitness coach data server. Read a user's fitness profile, stored workouts, completed sessions and weekly activity."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetProfile, Handler: h.getProfile},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolWeeklyActivity, Handler: h.weeklyActivity},
	)

	s.AddResources(
		server.ServerResource{Resource: resFallbackWorkouts, Handler: h.fallbackWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resFallbackWorkouts = mcp.NewResource(
	"fitcoach://fallback_workouts",
	"Built-in Workouts",
	mcp.WithResourceDescription("The rep-based and time-based workouts used when a workout cannot be fetched or generated"),
	mcp.WithMIMEType("application/json"),
)
