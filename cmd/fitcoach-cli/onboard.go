package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// conversation is the subset of the client the chat loop needs.
type conversation interface {
	StartOnboarding(ctx context.Context, auth0ID string) (string, error)
	AddToConversation(ctx context.Context, auth0ID, message string) (string, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

func newOnboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Chat with the coach to build your fitness profile",
		Long: `Starts a new coach conversation and reads your replies from stdin, one per line.
A line of the form "/audio <file>" sends a voice recording instead; "/quit" or
end of input ends the conversation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			return chat(contextOf(cmd), a.client, a.user, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// chat runs the onboarding conversation until the input is exhausted or
// the user quits. Failed turns print the client's apology and continue.
func chat(ctx context.Context, c conversation, auth0ID string, in io.Reader, out io.Writer) error {
	reply, _ := c.StartOnboarding(ctx, auth0ID)
	fmt.Fprintf(out, "coach> %s\n", reply)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case strings.HasPrefix(line, "/audio "):
			text, err := transcribeFile(ctx, c, strings.TrimSpace(strings.TrimPrefix(line, "/audio ")))
			if err != nil {
				fmt.Fprintf(out, "could not transcribe recording: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "you (transcribed)> %s\n", text)
			line = text
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		reply, _ := c.AddToConversation(ctx, auth0ID, line)
		fmt.Fprintf(out, "coach> %s\n", reply)
	}
}

func transcribeFile(ctx context.Context, c conversation, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return c.Transcribe(ctx, filepath.Base(path), f)
}
