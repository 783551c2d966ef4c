// Package workout runs a workout session: an ordered list of exercises
// driven through active, resting and complete phases by a one-second tick.
package workout

import (
	"errors"
	"fmt"
	"math"

	"github.com/claude/fitcoach/internal/models"
)

// RestSeconds is the rest interval after each rep-based exercise.
const RestSeconds = 60

// upNextCount is how many upcoming exercises a snapshot lists.
const upNextCount = 2

var (
	// ErrEmptyWorkout is returned for a workout without exercises.
	ErrEmptyWorkout = errors.New("workout has no exercises")
	// ErrNotAwaitingFinish is returned by Finish when the session is not
	// waiting on a rep-based exercise.
	ErrNotAwaitingFinish = errors.New("session is not waiting for a finished exercise")
)

// Phase is the state of a session.
type Phase string

const (
	PhaseActive   Phase = "active"
	PhaseResting  Phase = "resting"
	PhaseComplete Phase = "complete"
)

// Snapshot is a read-only view of a session at one instant.
type Snapshot struct {
	Phase         Phase              `json:"phase"`
	Type          models.WorkoutType `json:"type"`
	Index         int                `json:"current_exercise_index"`
	Total         int                `json:"total_exercises"`
	Exercise      models.Exercise    `json:"exercise"`
	TimeRemaining int                `json:"time_remaining"`
	TotalTime     int                `json:"total_time"`
	RestRemaining int                `json:"rest_time_remaining"`
	Progress      int                `json:"progress"`
	Elapsed       int                `json:"elapsed"`
	UpNext        []models.Exercise  `json:"up_next,omitempty"`
}

// AwaitingFinish reports whether the session waits for a manual finish.
func (s Snapshot) AwaitingFinish() bool {
	return s.Phase == PhaseActive && s.Type == models.RepBased
}

// Engine is the session state machine. It is not safe for concurrent use;
// a Runner owns it for the life of a session.
type Engine struct {
	workout   models.Workout
	durations []int

	index         int
	phase         Phase
	timeRemaining int
	totalTime     int
	restRemaining int
	elapsed       int
}

// New validates w and returns an engine positioned at the first exercise.
func New(w models.Workout) (*Engine, error) {
	if len(w.Exercises) == 0 {
		return nil, ErrEmptyWorkout
	}
	if !w.Type.Valid() {
		return nil, fmt.Errorf("workout %q: unknown type %q", w.Name, w.Type)
	}

	e := &Engine{workout: w, phase: PhaseActive, restRemaining: RestSeconds}
	if w.Type == models.TimeBased {
		e.durations = make([]int, len(w.Exercises))
		for i, ex := range w.Exercises {
			d, err := ParseDuration(ex.Duration)
			if err != nil {
				return nil, fmt.Errorf("exercise %d (%s): %w", i+1, ex.Name, err)
			}
			e.durations[i] = d
		}
		e.startTimer()
	}
	return e, nil
}

// Workout returns the workout being run.
func (e *Engine) Workout() models.Workout {
	return e.workout
}

// Done reports whether the session has reached PhaseComplete.
func (e *Engine) Done() bool {
	return e.phase == PhaseComplete
}

func (e *Engine) last() bool {
	return e.index >= len(e.workout.Exercises)-1
}

func (e *Engine) startTimer() {
	e.totalTime = e.durations[e.index]
	e.timeRemaining = e.totalTime
}

// Tick advances the session by one second. Ticks while waiting for a
// rep-based finish, or after completion, change nothing but elapsed time
// (which stops at completion).
func (e *Engine) Tick() Snapshot {
	if e.phase == PhaseComplete {
		return e.Snapshot()
	}
	e.elapsed++

	switch {
	case e.phase == PhaseResting:
		e.restRemaining--
		if e.restRemaining <= 0 {
			e.restRemaining = 0
			if e.last() {
				e.phase = PhaseComplete
				break
			}
			e.index++
			e.phase = PhaseActive
			e.restRemaining = RestSeconds
		}
	case e.workout.Type == models.TimeBased:
		e.timeRemaining--
		if e.timeRemaining <= 0 {
			e.timeRemaining = 0
			if e.last() {
				e.phase = PhaseComplete
				break
			}
			e.index++
			e.startTimer()
		}
	}
	return e.Snapshot()
}

// Finish marks the current rep-based exercise as done and starts the rest
// interval.
func (e *Engine) Finish() (Snapshot, error) {
	if e.phase != PhaseActive || e.workout.Type != models.RepBased {
		return e.Snapshot(), ErrNotAwaitingFinish
	}
	e.phase = PhaseResting
	e.restRemaining = RestSeconds
	return e.Snapshot(), nil
}

// Progress returns the completion percentage in [0,100].
func (e *Engine) Progress() int {
	if e.phase == PhaseComplete {
		return 100
	}
	n := float64(len(e.workout.Exercises))
	share := 100 / n
	completed := float64(e.index) / n * 100

	var current float64
	switch {
	case e.phase == PhaseResting:
		current = share
	case e.workout.Type == models.TimeBased && e.totalTime > 0:
		current = float64(e.totalTime-e.timeRemaining) / float64(e.totalTime) * share
	}
	return int(math.Min(math.Round(completed+current), 100))
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Phase:         e.phase,
		Type:          e.workout.Type,
		Index:         e.index,
		Total:         len(e.workout.Exercises),
		Exercise:      e.workout.Exercises[e.index],
		TimeRemaining: e.timeRemaining,
		TotalTime:     e.totalTime,
		RestRemaining: e.restRemaining,
		Progress:      e.Progress(),
		Elapsed:       e.elapsed,
	}
	if e.phase != PhaseComplete {
		end := min(e.index+1+upNextCount, len(e.workout.Exercises))
		if e.index+1 < end {
			s.UpNext = append([]models.Exercise(nil), e.workout.Exercises[e.index+1:end]...)
		}
	}
	return s
}
