package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkoutType selects how exercises in a workout complete.
type WorkoutType string

const (
	// TimeBased exercises complete when their countdown reaches zero.
	TimeBased WorkoutType = "time-based"
	// RepBased exercises complete on an explicit "finished" signal.
	RepBased WorkoutType = "rep-based"
)

// Valid reports whether t is a known workout type.
func (t WorkoutType) Valid() bool {
	return t == TimeBased || t == RepBased
}

// ParseWorkoutType maps the spellings seen from clients and the generator
// ("time-based", "TIME BASED", "rep-based", "REPETITION BASED") to a WorkoutType.
func ParseWorkoutType(s string) (WorkoutType, error) {
	switch s {
	case "time-based", "time", "TIME BASED", "time based":
		return TimeBased, nil
	case "rep-based", "rep", "reps", "REPETITION BASED", "repetition based":
		return RepBased, nil
	}
	return "", fmt.Errorf("unknown workout type %q", s)
}

// Exercise is one step of a workout. Duration is meaningful for time-based
// workouts ("1 minute"), Reps for rep-based ones.
type Exercise struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration,omitempty"`
	Reps        int    `json:"reps,omitempty"`
}

// Workout is an ordered, immutable list of exercises.
type Workout struct {
	Type        WorkoutType `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Duration    string      `json:"duration,omitempty"`
	Exercises   []Exercise  `json:"exercises"`
}

// StoredWorkout is a generated workout as persisted by the server.
type StoredWorkout struct {
	ID        uuid.UUID `json:"workout_id"`
	Auth0ID   string    `json:"auth0_id"`
	Workout   Workout   `json:"workout"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionLog summarises one completed workout session. It is written once
// the session is over; in-progress state is never persisted.
type SessionLog struct {
	ID                 uuid.UUID   `json:"id"`
	Auth0ID            string      `json:"auth0_id"`
	WorkoutID          *uuid.UUID  `json:"workout_id,omitempty"`
	WorkoutName        string      `json:"workout_name"`
	WorkoutType        WorkoutType `json:"workout_type"`
	ExercisesCompleted int         `json:"exercises_completed"`
	DurationSec        int         `json:"duration_sec"`
	StartedAt          time.Time   `json:"started_at"`
	CompletedAt        time.Time   `json:"completed_at"`
}
