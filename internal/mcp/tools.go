package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// auth0ID reads the auth0_id argument, falling back to the transport user.
func auth0ID(ctx context.Context, req mcp.CallToolRequest) string {
	if id := req.GetString("auth0_id", ""); id != "" {
		return id
	}
	return Auth0IDFromContext(ctx)
}

// --- Tool definitions ---

var auth0IDArg = mcp.WithString("auth0_id", mcp.Description("Identity provider subject of the user. Defaults to the connected user."))

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("Get a user's fitness profile. Missing fields are shown as placeholders such as 'Not specified'."),
	auth0IDArg,
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get a stored workout with its exercises. Time-based exercises carry a duration, rep-based ones a repetition count."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List completed workout sessions in a time range, oldest first."),
	auth0IDArg,
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolWeeklyActivity = mcp.NewTool("get_weekly_activity",
	mcp.WithDescription("Workout minutes and session counts for each of the last seven days, ending today."),
	auth0IDArg,
)

// --- Tool handlers ---

func (h *handlers) getProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := auth0ID(ctx, req)
	if id == "" {
		return mcp.NewToolResultError("auth0_id parameter is required"), nil
	}

	u, err := h.ds.GetUser(ctx, id)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		h.log.Error("mcp get_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(models.NewProfileView(u, id))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid workout_id: " + err.Error()), nil
	}

	sw, err := h.ds.GetWorkout(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return mcp.NewToolResultError("workout not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sw)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := auth0ID(ctx, req)
	if id == "" {
		return mcp.NewToolResultError("auth0_id parameter is required"), nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	logs, err := h.ds.QuerySessionLogs(ctx, id, start, end)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if logs == nil {
		logs = []models.SessionLog{}
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) weeklyActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := auth0ID(ctx, req)
	if id == "" {
		return mcp.NewToolResultError("auth0_id parameter is required"), nil
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	logs, err := h.ds.QuerySessionLogs(ctx, id, today.AddDate(0, 0, -6), today.AddDate(0, 0, 1))
	if err != nil {
		h.log.Error("mcp get_weekly_activity", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(models.WeeklyActivity(logs, now))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
