package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fitcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id::text, auth0_id, name, email, preferences, created_at,
	COALESCE(height, ''), COALESCE(weight, ''), COALESCE(age, 0),
	COALESCE(fitness_level, ''), COALESCE(workout_time, ''), COALESCE(goal, ''),
	COALESCE(profile_notes, '')`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Auth0ID, &u.Name, &u.Email, &u.Preferences, &u.CreatedAt,
		&u.Height, &u.Weight, &u.Age, &u.FitnessLevel, &u.WorkoutTime, &u.Goal, &u.ProfileNotes)
	if err != nil {
		return nil, err
	}
	if u.Preferences == nil {
		u.Preferences = map[string]any{}
	}
	return &u, nil
}

// CreateUser registers a user. Returns ErrUserExists if the auth0_id is
// already registered.
func (db *DB) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	prefs := nu.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	u, err := scanUser(db.Pool.QueryRow(ctx, `
		INSERT INTO users (auth0_id, name, email, preferences)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth0_id) DO NOTHING
		RETURNING `+userColumns,
		nu.Auth0ID, nu.Name, nu.Email, prefs))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// GetUser looks up a user by identity provider subject.
func (db *DB) GetUser(ctx context.Context, auth0ID string) (*models.User, error) {
	u, err := scanUser(db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// UpdateFitnessProfile overwrites the onboarding answers of a user. Empty
// fields in p keep their stored value.
func (db *DB) UpdateFitnessProfile(ctx context.Context, auth0ID string, p models.FitnessProfile) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE users SET
			height        = COALESCE(NULLIF($2, ''), height),
			weight        = COALESCE(NULLIF($3, ''), weight),
			age           = COALESCE(NULLIF($4, 0), age),
			fitness_level = COALESCE(NULLIF($5, ''), fitness_level),
			workout_time  = COALESCE(NULLIF($6, ''), workout_time),
			goal          = COALESCE(NULLIF($7, ''), goal),
			profile_notes = COALESCE(NULLIF($8, ''), profile_notes),
			updated_at    = NOW()
		WHERE auth0_id = $1`,
		auth0ID, p.Height, p.Weight, p.Age, p.FitnessLevel, p.WorkoutTime, p.Goal, p.Preferences)
	if err != nil {
		return fmt.Errorf("updating fitness profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
