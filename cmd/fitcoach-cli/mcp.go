package main

import (
	"context"

	"github.com/claude/fitcoach/internal/client"
	"github.com/claude/fitcoach/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var _ mcp.DataSource = (*client.Client)(nil)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the coach data to an MCP client over stdio",
		Long: `Runs an MCP server on stdin/stdout backed by the coach server's REST API.
Tools default to the --user subject when called without auth0_id.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcp.New(a.client, Version, a.log)
			return server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
				return mcp.WithAuth0ID(ctx, a.user)
			}))
		},
	}
}
