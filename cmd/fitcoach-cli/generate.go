package main

import (
	"fmt"
	"io"

	"github.com/claude/fitcoach/internal/models"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var preferences, typ string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a personal workout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			wt := models.WorkoutType(typ)
			if typ != "" && !wt.Valid() {
				return fmt.Errorf("unknown workout type %q (want %s or %s)", typ, models.TimeBased, models.RepBased)
			}
			gw, err := a.client.GenerateWorkout(contextOf(cmd), a.user, preferences, wt)
			if err != nil {
				return fmt.Errorf("generating workout: %w", err)
			}
			out := cmd.OutOrStdout()
			printWorkout(out, gw.Workout)
			if !gw.Generated {
				fmt.Fprintln(out, "\n(the coach was unavailable, this is a built-in workout)")
			}
			fmt.Fprintf(out, "\nWorkout ID: %s\n", gw.WorkoutID)
			if gw.ShareURL != "" {
				fmt.Fprintf(out, "Share:      %s\n", gw.ShareURL)
			}
			fmt.Fprintf(out, "Start it with: fitcoach session %s\n", gw.WorkoutID)
			return nil
		},
	}
	cmd.Flags().StringVar(&preferences, "preferences", "", "extra preferences for this workout")
	cmd.Flags().StringVar(&typ, "type", "", "time-based or rep-based")
	return cmd
}

func printWorkout(w io.Writer, wo models.Workout) {
	fmt.Fprintf(w, "%s (%s)\n", wo.Name, wo.Type)
	if wo.Description != "" {
		fmt.Fprintln(w, wo.Description)
	}
	if wo.Duration != "" {
		fmt.Fprintf(w, "Total: %s\n", wo.Duration)
	}
	for i, ex := range wo.Exercises {
		amount := ex.Duration
		if wo.Type == models.RepBased {
			amount = fmt.Sprintf("%d reps", ex.Reps)
		}
		fmt.Fprintf(w, "%2d. %-28s %s\n", i+1, ex.Name, amount)
	}
}
