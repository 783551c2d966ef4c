package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/workout"
)

// MinExercises is the fewest exercises a generated workout may have.
const MinExercises = 5

// GenerateRequest asks for a workout tailored to a user.
type GenerateRequest struct {
	Auth0ID     string
	Preferences string
	// Type forces the workout type. Empty lets the model decide.
	Type models.WorkoutType
}

// generated is the model's reply: one list entry per exercise.
type generated struct {
	WorkoutName        string   `json:"workout_name"`
	WorkoutDescription string   `json:"workout_description"`
	Name               []string `json:"name"`
	Description        []string `json:"description"`
	Duration           []int    `json:"duration"`
	Type               []string `json:"type"`
}

// GenerateWorkout builds a workout from the user's stored profile and the
// request preferences. Any failure falls back to the built-in workout for
// the requested type; the returned bool reports whether the workout was
// generated.
func (s *Service) GenerateWorkout(ctx context.Context, req GenerateRequest) (models.Workout, bool) {
	fallbackType := req.Type
	if fallbackType == "" {
		fallbackType = workout.DefaultType
	}

	w, err := s.generate(ctx, req)
	if err != nil {
		s.log.Warn("workout generation failed, using built-in workout",
			"auth0_id", req.Auth0ID, "type", string(fallbackType), "error", err)
		return workout.Fallback(fallbackType), false
	}
	return w, true
}

func (s *Service) generate(ctx context.Context, req GenerateRequest) (models.Workout, error) {
	if s.chat == nil {
		return models.Workout{}, ErrNoProvider
	}

	var profile models.FitnessProfile
	u, err := s.store.GetUser(ctx, req.Auth0ID)
	switch {
	case err == nil:
		profile = u.Profile()
	case errors.Is(err, models.ErrNotFound):
	default:
		return models.Workout{}, fmt.Errorf("loading profile: %w", err)
	}
	if req.Preferences != "" {
		if profile.Preferences != "" {
			profile.Preferences += "; "
		}
		profile.Preferences += req.Preferences
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return models.Workout{}, fmt.Errorf("encoding profile: %w", err)
	}
	prompt := string(payload)
	if req.Type != "" {
		prompt += "\nEvery exercise must be " + typeLabel(req.Type) + "."
	}

	raw, err := s.chat.Complete(ctx, generatorInstruction,
		[]models.Message{{Role: models.RoleUser, Content: prompt}})
	if err != nil {
		return models.Workout{}, fmt.Errorf("completing workout: %w", err)
	}
	return ParseGenerated(raw, req.Type)
}

func typeLabel(t models.WorkoutType) string {
	if t == models.TimeBased {
		return "TIME BASED"
	}
	return "REPETITION BASED"
}

// ParseGenerated converts a generator reply to a Workout. The reply may be
// wrapped in a fenced code block. When want is empty the workout type is
// the type of the first exercise.
func ParseGenerated(raw string, want models.WorkoutType) (models.Workout, error) {
	var g generated
	if err := json.Unmarshal([]byte(stripFence(raw)), &g); err != nil {
		return models.Workout{}, fmt.Errorf("decoding generated workout: %w", err)
	}

	n := len(g.Name)
	if len(g.Description) != n || len(g.Duration) != n || len(g.Type) != n {
		return models.Workout{}, fmt.Errorf("generated lists differ in length: name=%d description=%d duration=%d type=%d",
			n, len(g.Description), len(g.Duration), len(g.Type))
	}
	if n < MinExercises {
		return models.Workout{}, fmt.Errorf("generated %d exercises, need at least %d", n, MinExercises)
	}

	typ := want
	if typ == "" {
		t, err := models.ParseWorkoutType(g.Type[0])
		if err != nil {
			return models.Workout{}, err
		}
		typ = t
	}

	w := models.Workout{
		Type:        typ,
		Name:        g.WorkoutName,
		Description: g.WorkoutDescription,
		Exercises:   make([]models.Exercise, 0, n),
	}
	if w.Name == "" {
		w.Name = "Your Personal Workout"
	}

	total := 0
	for i := range n {
		if g.Duration[i] <= 0 {
			return models.Workout{}, fmt.Errorf("exercise %q: duration %d must be positive", g.Name[i], g.Duration[i])
		}
		ex := models.Exercise{Name: g.Name[i], Description: g.Description[i]}
		if typ == models.TimeBased {
			ex.Duration = workout.FormatDuration(g.Duration[i])
			total += g.Duration[i]
		} else {
			ex.Reps = g.Duration[i]
		}
		w.Exercises = append(w.Exercises, ex)
	}
	if typ == models.TimeBased {
		w.Duration = workout.FormatDuration(total)
	}
	return w, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
