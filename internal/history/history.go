// Package history keeps a local journal of completed workout sessions so
// the terminal client can show past sessions offline and retry logging
// them to the server.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one journaled session.
type Entry struct {
	models.SessionLog
	Synced bool `json:"synced"`
}

// DB is the session journal.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the journal at dir/history.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id                  TEXT PRIMARY KEY,
		auth0_id            TEXT NOT NULL,
		workout_id          TEXT,
		workout_name        TEXT NOT NULL,
		workout_type        TEXT NOT NULL,
		exercises_completed INTEGER NOT NULL,
		duration_sec        INTEGER NOT NULL,
		started_at          TIMESTAMP NOT NULL,
		completed_at        TIMESTAMP NOT NULL,
		synced              INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &DB{db: db}, nil
}

// Record journals a completed session. A zero ID is replaced with a new
// one; the stored log is returned.
func (h *DB) Record(l models.SessionLog) (models.SessionLog, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	var workoutID sql.NullString
	if l.WorkoutID != nil {
		workoutID = sql.NullString{String: l.WorkoutID.String(), Valid: true}
	}
	_, err := h.db.Exec(
		`INSERT OR REPLACE INTO sessions (id, auth0_id, workout_id, workout_name, workout_type,
		 exercises_completed, duration_sec, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.Auth0ID, workoutID, l.WorkoutName, string(l.WorkoutType),
		l.ExercisesCompleted, l.DurationSec, l.StartedAt.UTC(), l.CompletedAt.UTC(),
	)
	if err != nil {
		return l, fmt.Errorf("recording session: %w", err)
	}
	return l, nil
}

// MarkSynced records that the session was logged on the server.
func (h *DB) MarkSynced(id uuid.UUID) error {
	_, err := h.db.Exec(`UPDATE sessions SET synced = 1 WHERE id = ?`, id.String())
	return err
}

// Recent returns the newest sessions for a user, newest first.
func (h *DB) Recent(auth0ID string, limit int) ([]Entry, error) {
	return h.query(`WHERE auth0_id = ? ORDER BY completed_at DESC LIMIT ?`, auth0ID, limit)
}

// Pending returns sessions with a stored workout that have not been logged
// on the server yet, oldest first.
func (h *DB) Pending(auth0ID string) ([]Entry, error) {
	return h.query(`WHERE auth0_id = ? AND synced = 0 AND workout_id IS NOT NULL ORDER BY completed_at ASC`, auth0ID)
}

func (h *DB) query(where string, args ...any) ([]Entry, error) {
	rows, err := h.db.Query(
		`SELECT id, auth0_id, workout_id, workout_name, workout_type, exercises_completed,
		 duration_sec, started_at, completed_at, synced FROM sessions `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var (
			e         Entry
			id, typ   string
			workoutID sql.NullString
			started   time.Time
			completed time.Time
		)
		if err := rows.Scan(&id, &e.Auth0ID, &workoutID, &e.WorkoutName, &typ,
			&e.ExercisesCompleted, &e.DurationSec, &started, &completed, &e.Synced); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("history id %q: %w", id, err)
		}
		if workoutID.Valid {
			wid, err := uuid.Parse(workoutID.String)
			if err != nil {
				return nil, fmt.Errorf("history workout id %q: %w", workoutID.String, err)
			}
			e.WorkoutID = &wid
		}
		e.WorkoutType = models.WorkoutType(typ)
		e.StartedAt = started
		e.CompletedAt = completed
		result = append(result, e)
	}
	return result, rows.Err()
}

// Close closes the journal.
func (h *DB) Close() error {
	return h.db.Close()
}
