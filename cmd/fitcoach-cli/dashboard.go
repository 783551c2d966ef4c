package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/claude/fitcoach/internal/models"
	"github.com/spf13/cobra"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show profile, weekly activity and recent workouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			d, err := a.client.Dashboard(contextOf(cmd), a.user)
			if err != nil {
				return fmt.Errorf("fetching dashboard: %w", err)
			}
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func printDashboard(w io.Writer, d *models.Dashboard) {
	printProfile(w, d.Profile)

	fmt.Fprintln(w, "\nThis week:")
	for _, day := range d.WeeklyActivity {
		fmt.Fprintf(w, "  %s %3d min %s\n", day.Day, day.Minutes, strings.Repeat("#", day.Minutes/5))
	}

	fmt.Fprintln(w, "\nRecent workouts:")
	if len(d.RecentWorkouts) == 0 {
		fmt.Fprintln(w, "  none yet")
	}
	for _, sw := range d.RecentWorkouts {
		fmt.Fprintf(w, "  %s  %s (%s)  %s\n", sw.CreatedAt.Local().Format("2006-01-02"), sw.Workout.Name, sw.Workout.Type, sw.ID)
	}
}
