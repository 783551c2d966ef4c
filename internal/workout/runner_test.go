package workout

import (
	"context"
	"testing"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualTicker feeds ticks as fast as the runner consumes them until the
// test ends.
func manualTicker(t *testing.T) TickerFunc {
	return func(time.Duration) (<-chan time.Time, func()) {
		ch := make(chan time.Time)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case ch <- time.Time{}:
				case <-done:
					return
				}
			}
		}()
		return ch, func() { close(done) }
	}
}

func TestRunnerTimeBased(t *testing.T) {
	e, err := New(timed("3 seconds", "2 seconds"))
	require.NoError(t, err)

	var seen []Snapshot
	r := NewRunner(e, func(s Snapshot) { seen = append(seen, s) }, WithTicker(manualTicker(t)))

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseComplete, final.Phase)
	assert.Equal(t, 5, final.Elapsed)

	require.NotEmpty(t, seen)
	assert.Equal(t, 0, seen[0].Progress)
	assert.Equal(t, PhaseComplete, seen[len(seen)-1].Phase)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i].Progress, seen[i-1].Progress)
	}
}

func TestRunnerRepBased(t *testing.T) {
	w := models.Workout{
		Type: models.RepBased,
		Exercises: []models.Exercise{
			{Name: "Push-Ups", Reps: 15},
			{Name: "Squats", Reps: 20},
		},
	}
	e, err := New(w)
	require.NoError(t, err)

	var r *Runner
	finishes := 0
	r = NewRunner(e, func(s Snapshot) {
		if s.AwaitingFinish() {
			finishes++
			r.Finish()
		}
	}, WithTicker(manualTicker(t)))

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseComplete, final.Phase)
	assert.Equal(t, 2, finishes)
	// Idle ticks before a finish is picked up also count as elapsed time.
	assert.GreaterOrEqual(t, final.Elapsed, 2*RestSeconds)
}

func TestRunnerCancel(t *testing.T) {
	e, err := New(Fallback(models.RepBased))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	blocked := func(time.Duration) (<-chan time.Time, func()) {
		return make(chan time.Time), func() {}
	}
	r := NewRunner(e, func(Snapshot) { cancel() }, WithTicker(blocked))

	snap, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PhaseActive, snap.Phase)
}

func TestRunnerFinishIgnoredWhenNotWaiting(t *testing.T) {
	e, err := New(timed("2 seconds"))
	require.NoError(t, err)

	r := NewRunner(e, nil, WithTicker(manualTicker(t)))
	r.Finish()
	r.Finish()

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseComplete, final.Phase)
}
