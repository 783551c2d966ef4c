package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/claude/fitcoach/internal/models"
	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the signed-in user with the coach server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			u, err := a.client.CreateUser(contextOf(cmd), models.NewUser{
				Auth0ID: a.user,
				Name:    name,
				Email:   email,
			})
			if errors.Is(err, models.ErrUserExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already registered\n", a.user)
				return nil
			}
			if err != nil {
				return fmt.Errorf("registering user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", u.Name, u.Auth0ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the user's fitness profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), a.client.GetProfile(contextOf(cmd), a.user))
			return nil
		},
	}
	cmd.AddCommand(newProfileSetCmd(a))
	return cmd
}

func newProfileSetCmd(a *app) *cobra.Command {
	var (
		apiKey string
		p      models.FitnessProfile
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store fitness profile fields directly (requires the server API key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			if apiKey == "" {
				return fmt.Errorf("no API key: pass --api-key or set %s", envAPIKey)
			}
			if p.IsEmpty() {
				return fmt.Errorf("nothing to update")
			}
			if err := a.client.UpdateFitnessProfile(contextOf(cmd), apiKey, a.user, p); err != nil {
				return fmt.Errorf("updating profile: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Fitness profile updated successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", envOr(envAPIKey, ""), "server API key (env "+envAPIKey+")")
	cmd.Flags().StringVar(&p.Height, "height", "", "height, e.g. 180cm")
	cmd.Flags().StringVar(&p.Weight, "weight", "", "weight, e.g. 75kg")
	cmd.Flags().IntVar(&p.Age, "age", 0, "age in years")
	cmd.Flags().StringVar(&p.FitnessLevel, "fitness-level", "", "beginner, intermediate or advanced")
	cmd.Flags().StringVar(&p.WorkoutTime, "workout-time", "", "preferred workout length")
	cmd.Flags().StringVar(&p.Goal, "goal", "", "fitness goal")
	cmd.Flags().StringVar(&p.Preferences, "preferences", "", "free-form preferences")
	return cmd
}

func printProfile(w io.Writer, v models.ProfileView) {
	rows := [][2]string{
		{"Name", v.Name},
		{"Email", v.Email},
		{"Height", v.Height},
		{"Weight", v.Weight},
		{"Age", v.Age},
		{"Fitness level", v.FitnessLevel},
		{"Workout time", v.WorkoutTime},
		{"Goal", v.Goal},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-14s %s\n", r[0]+":", r[1])
	}
}
