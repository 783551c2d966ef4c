package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/workout"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSessionCmd(a *app) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "session [workout-id]",
		Short: "Run a workout session",
		Long: `Runs a stored workout, or the built-in workout of --type when no ID is given
or the workout cannot be fetched. Time-based exercises count down on their
own; for rep-based exercises press Enter when you have finished the set.
Completed sessions are kept in the local history and logged on the server.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fallback := models.WorkoutType(typ)
			if !fallback.Valid() {
				return fmt.Errorf("unknown workout type %q (want %s or %s)", typ, models.TimeBased, models.RepBased)
			}

			ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w, workoutID := workout.Fallback(fallback), uuid.Nil
			if len(args) == 1 {
				w, workoutID = a.client.LoadWorkout(ctx, args[0], fallback)
			}

			out := cmd.OutOrStdout()
			started := time.Now()
			final, err := runSession(ctx, w, cmd.InOrStdin(), out)
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(out, "\nSession cancelled, nothing recorded.")
				return nil
			}
			if err != nil {
				return err
			}

			l := models.SessionLog{
				Auth0ID:            a.user,
				WorkoutName:        w.Name,
				WorkoutType:        w.Type,
				ExercisesCompleted: final.Total,
				DurationSec:        final.Elapsed,
				StartedAt:          started.UTC(),
				CompletedAt:        started.Add(time.Duration(final.Elapsed) * time.Second).UTC(),
			}
			if workoutID != uuid.Nil {
				l.WorkoutID = &workoutID
			}
			return a.recordSession(contextOf(cmd), l, out)
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(workout.DefaultType), "built-in workout to run without a workout ID (time-based or rep-based)")
	return cmd
}

// runSession drives w to completion, printing every state change to out.
// Each line read from in finishes the current rep-based exercise.
func runSession(ctx context.Context, w models.Workout, in io.Reader, out io.Writer, opts ...workout.RunnerOption) (workout.Snapshot, error) {
	e, err := workout.New(w)
	if err != nil {
		return workout.Snapshot{}, fmt.Errorf("starting session: %w", err)
	}
	printWorkout(out, w)
	fmt.Fprintln(out)

	r := workout.NewRunner(e, func(s workout.Snapshot) {
		fmt.Fprintln(out, render(s))
	}, opts...)

	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			r.Finish()
		}
	}()
	return r.Run(ctx)
}

// render formats one snapshot as a status line.
func render(s workout.Snapshot) string {
	switch s.Phase {
	case workout.PhaseComplete:
		return fmt.Sprintf("[100%%] Workout complete in %s!", workout.FormatClock(s.Elapsed))
	case workout.PhaseResting:
		next := "finish"
		if len(s.UpNext) > 0 {
			next = s.UpNext[0].Name
		}
		return fmt.Sprintf("[%3d%%] Rest %s, up next: %s", s.Progress, workout.FormatClock(s.RestRemaining), next)
	}
	pos := fmt.Sprintf("%d/%d %s", s.Index+1, s.Total, s.Exercise.Name)
	if s.Type == models.TimeBased {
		return fmt.Sprintf("[%3d%%] %s %s left", s.Progress, pos, workout.FormatClock(s.TimeRemaining))
	}
	return fmt.Sprintf("[%3d%%] %s x%d, press Enter when done", s.Progress, pos, s.Exercise.Reps)
}

// recordSession journals l locally and, for stored workouts, logs it on the
// server. A failed upload stays pending for "history sync".
func (a *app) recordSession(ctx context.Context, l models.SessionLog, out io.Writer) error {
	h, err := a.openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	l, err = h.Record(l)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Recorded %s: %d exercises in %s\n", l.WorkoutName, l.ExercisesCompleted, workout.FormatClock(l.DurationSec))

	if l.WorkoutID == nil || a.user == "" {
		return nil
	}
	if _, err := a.client.LogSession(ctx, l); err != nil {
		a.log.Warn("logging session on server failed, kept for sync", "session_id", l.ID, "error", err)
		fmt.Fprintln(out, "Could not reach the server; run \"fitcoach history sync\" later.")
		return nil
	}
	return h.MarkSynced(l.ID)
}
