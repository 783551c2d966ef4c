package mcp

import (
	"context"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and *client.Client (remote via REST API) satisfy this interface.
type DataSource interface {
	GetUser(ctx context.Context, auth0ID string) (*models.User, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.StoredWorkout, error)
	QuerySessionLogs(ctx context.Context, auth0ID string, start, end time.Time) ([]models.SessionLog, error)
}
