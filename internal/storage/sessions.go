package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
)

// LogSession records a completed workout session. A zero ID is replaced
// with a new one; the stored log is returned.
func (db *DB) LogSession(ctx context.Context, l models.SessionLog) (models.SessionLog, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO session_logs (id, auth0_id, workout_id, workout_name, workout_type,
		 exercises_completed, duration_sec, started_at, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO NOTHING`,
		l.ID, l.Auth0ID, l.WorkoutID, l.WorkoutName, string(l.WorkoutType),
		l.ExercisesCompleted, l.DurationSec, l.StartedAt, l.CompletedAt)
	if err != nil {
		return l, fmt.Errorf("inserting session log: %w", err)
	}
	return l, nil
}

// QuerySessionLogs returns a user's sessions completed in [start, end),
// oldest first.
func (db *DB) QuerySessionLogs(ctx context.Context, auth0ID string, start, end time.Time) ([]models.SessionLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, auth0_id, workout_id, workout_name, workout_type,
		 exercises_completed, duration_sec, started_at, completed_at
		 FROM session_logs
		 WHERE auth0_id = $1 AND completed_at >= $2 AND completed_at < $3
		 ORDER BY completed_at ASC`,
		auth0ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying session logs: %w", err)
	}
	defer rows.Close()

	var result []models.SessionLog
	for rows.Next() {
		var l models.SessionLog
		var typ string
		if err := rows.Scan(&l.ID, &l.Auth0ID, &l.WorkoutID, &l.WorkoutName, &typ,
			&l.ExercisesCompleted, &l.DurationSec, &l.StartedAt, &l.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning session log: %w", err)
		}
		l.WorkoutType = models.WorkoutType(typ)
		result = append(result, l)
	}
	return result, rows.Err()
}
