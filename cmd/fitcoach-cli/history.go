package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/claude/fitcoach/internal/history"
	"github.com/claude/fitcoach/internal/workout"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sessions from the local history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			entries, err := h.Recent(a.user, limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to show")
	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Log sessions that have not reached the server yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			pending, err := h.Pending(a.user)
			if err != nil {
				return err
			}
			synced := 0
			for _, e := range pending {
				if _, err := a.client.LogSession(contextOf(cmd), e.SessionLog); err != nil {
					a.log.Warn("session sync failed", "session_id", e.ID, "error", err)
					continue
				}
				if err := h.MarkSynced(e.ID); err != nil {
					return err
				}
				synced++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d of %d pending sessions\n", synced, len(pending))
			return nil
		},
	})
	return cmd
}

func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No sessions yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPLETED\tWORKOUT\tTYPE\tEXERCISES\tTIME\tSYNCED")
	for _, e := range entries {
		synced := "-"
		if e.WorkoutID != nil {
			synced = "no"
			if e.Synced {
				synced = "yes"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.CompletedAt.Local().Format("2006-01-02 15:04"), e.WorkoutName, e.WorkoutType,
			e.ExercisesCompleted, workout.FormatClock(e.DurationSec), synced)
	}
	tw.Flush()
}
