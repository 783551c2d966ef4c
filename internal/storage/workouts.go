package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveWorkout stores a generated workout and returns its new ID.
func (db *DB) SaveWorkout(ctx context.Context, auth0ID string, w models.Workout) (uuid.UUID, error) {
	id := uuid.New()
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, auth0_id, workout) VALUES ($1, $2, $3)`,
		id, auth0ID, w); err != nil {
		return uuid.Nil, fmt.Errorf("inserting workout: %w", err)
	}
	return id, nil
}

// GetWorkout retrieves a stored workout by ID.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.StoredWorkout, error) {
	var sw models.StoredWorkout
	err := db.Pool.QueryRow(ctx,
		`SELECT id, auth0_id, workout, created_at FROM workouts WHERE id = $1`, id,
	).Scan(&sw.ID, &sw.Auth0ID, &sw.Workout, &sw.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return &sw, nil
}

// ListWorkouts returns a user's most recent workouts, newest first.
func (db *DB) ListWorkouts(ctx context.Context, auth0ID string, limit int) ([]models.StoredWorkout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, auth0_id, workout, created_at FROM workouts
		 WHERE auth0_id = $1 ORDER BY created_at DESC LIMIT $2`, auth0ID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.StoredWorkout
	for rows.Next() {
		var sw models.StoredWorkout
		if err := rows.Scan(&sw.ID, &sw.Auth0ID, &sw.Workout, &sw.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, sw)
	}
	return result, rows.Err()
}
