package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) fallbackWorkouts(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(map[string]models.Workout{
		string(models.RepBased):  workout.Fallback(models.RepBased),
		string(models.TimeBased): workout.Fallback(models.TimeBased),
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
