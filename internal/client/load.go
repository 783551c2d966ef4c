package client

import (
	"context"

	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/workout"
	"github.com/google/uuid"
)

// LoadWorkout fetches the workout with the given ID. If the ID is invalid,
// the fetch fails or the workout cannot be run, the failure is logged and
// the built-in workout of type fallback is returned instead. The returned
// ID is uuid.Nil for built-in workouts.
func (c *Client) LoadWorkout(ctx context.Context, workoutID string, fallback models.WorkoutType) (models.Workout, uuid.UUID) {
	id, err := uuid.Parse(workoutID)
	if err != nil {
		c.log.Warn("invalid workout ID, using built-in workout", "workout_id", workoutID, "error", err)
		return workout.Fallback(fallback), uuid.Nil
	}

	sw, err := c.GetWorkout(ctx, id)
	if err != nil {
		c.log.Warn("fetching workout failed, using built-in workout", "workout_id", workoutID, "error", err)
		return workout.Fallback(fallback), uuid.Nil
	}
	if _, err := workout.New(sw.Workout); err != nil {
		c.log.Warn("fetched workout is not runnable, using built-in workout", "workout_id", workoutID, "error", err)
		return workout.Fallback(fallback), uuid.Nil
	}
	return sw.Workout, sw.ID
}
