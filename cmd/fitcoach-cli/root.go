package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/fitcoach/internal/client"
	"github.com/claude/fitcoach/internal/history"
	"github.com/spf13/cobra"
)

const (
	envServerURL = "FITCOACH_SERVER_URL"
	envUser      = "FITCOACH_USER"
	envToken     = "FITCOACH_TOKEN"
	envAPIKey    = "FITCOACH_API_KEY"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	serverURL string
	user      string
	token     string
	stateDir  string
	verbose   bool

	log    *slog.Logger
	client *client.Client
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fitcoach"
	}
	return filepath.Join(home, ".fitcoach")
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "fitcoach",
		Short:        "Terminal client for the fitness coach",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			a.client = client.New(a.serverURL, a.token, a.log)
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.serverURL, "server", envOr(envServerURL, client.DefaultServerURL), "coach server base URL (env "+envServerURL+")")
	root.PersistentFlags().StringVar(&a.user, "user", os.Getenv(envUser), "identity provider subject of the signed-in user (env "+envUser+")")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv(envToken), "ID token sent when registering (env "+envToken+")")
	root.PersistentFlags().StringVar(&a.stateDir, "state-dir", defaultStateDir(), "directory for the local session history")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests and fallbacks")

	root.AddCommand(
		newRegisterCmd(a),
		newProfileCmd(a),
		newOnboardCmd(a),
		newGenerateCmd(a),
		newSessionCmd(a),
		newHistoryCmd(a),
		newDashboardCmd(a),
		newMCPCmd(a),
	)
	return root
}

// requireUser fails commands that act on behalf of a user when none is set.
func (a *app) requireUser() error {
	if a.user == "" {
		return fmt.Errorf("no user: pass --user or set %s", envUser)
	}
	return nil
}

func (a *app) openHistory() (*history.DB, error) {
	h, err := history.Open(a.stateDir)
	if err != nil {
		return nil, fmt.Errorf("opening session history: %w", err)
	}
	return h, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
