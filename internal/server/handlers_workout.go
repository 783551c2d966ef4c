package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/claude/fitcoach/internal/coach"
	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
)

type generateRequest struct {
	Auth0ID     string `json:"auth0_id"`
	Preferences string `json:"preferences"`
	Type        string `json:"type"`
}

type workoutResponse struct {
	WorkoutID uuid.UUID      `json:"workout_id"`
	Workout   models.Workout `json:"workout"`
	ShareURL  string         `json:"share_url,omitempty"`
	Generated *bool          `json:"generated,omitempty"`
}

func (s *Server) shareURL(id uuid.UUID) string {
	return strings.TrimRight(s.opts.PublicURL, "/") + "/workout/" + id.String()
}

// handleGenerateWorkout always stores and returns a workout: when the coach
// cannot produce one, the built-in workout is used.
func (s *Server) handleGenerateWorkout(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Auth0ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "auth0_id is required"})
		return
	}
	var typ models.WorkoutType
	if req.Type != "" {
		t, err := models.ParseWorkoutType(req.Type)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		typ = t
	}

	wo, generated := s.coach.GenerateWorkout(r.Context(), coach.GenerateRequest{
		Auth0ID:     req.Auth0ID,
		Preferences: req.Preferences,
		Type:        typ,
	})

	id, err := s.store.SaveWorkout(r.Context(), req.Auth0ID, wo)
	if err != nil {
		s.log.Error("saving workout failed", "auth0_id", req.Auth0ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("workout created", "workout_id", id, "auth0_id", req.Auth0ID, "generated", generated)

	writeJSON(w, http.StatusOK, workoutResponse{
		WorkoutID: id,
		Workout:   wo,
		ShareURL:  s.shareURL(id),
		Generated: &generated,
	})
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	if s.serveApp(w, r) {
		return
	}
	id, err := uuid.Parse(pathParam(r, "workout_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	sw, err := s.store.GetWorkout(r.Context(), id)
	if isNotFound(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workoutResponse{WorkoutID: sw.ID, Workout: sw.Workout})
}

type logSessionRequest struct {
	ID                 uuid.UUID `json:"id"`
	Auth0ID            string    `json:"auth0_id"`
	ExercisesCompleted int       `json:"exercises_completed"`
	DurationSec        int       `json:"duration_sec"`
	StartedAt          time.Time `json:"started_at"`
	CompletedAt        time.Time `json:"completed_at"`
}

func (s *Server) handleLogSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(pathParam(r, "workout_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	var req logSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Auth0ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "auth0_id is required"})
		return
	}
	if req.DurationSec < 0 || req.ExercisesCompleted < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "duration_sec and exercises_completed must not be negative"})
		return
	}

	sw, err := s.store.GetWorkout(r.Context(), id)
	if isNotFound(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if req.ExercisesCompleted > len(sw.Workout.Exercises) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercises_completed exceeds the workout length"})
		return
	}

	completed := req.CompletedAt
	if completed.IsZero() {
		completed = s.now()
	}
	started := req.StartedAt
	if started.IsZero() {
		started = completed.Add(-time.Duration(req.DurationSec) * time.Second)
	}

	logged, err := s.store.LogSession(r.Context(), models.SessionLog{
		ID:                 req.ID,
		Auth0ID:            req.Auth0ID,
		WorkoutID:          &sw.ID,
		WorkoutName:        sw.Workout.Name,
		WorkoutType:        sw.Workout.Type,
		ExercisesCompleted: req.ExercisesCompleted,
		DurationSec:        req.DurationSec,
		StartedAt:          started,
		CompletedAt:        completed,
	})
	if err != nil {
		s.log.Error("logging session failed", "workout_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, logged)
}
