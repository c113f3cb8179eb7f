package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ricardonunez-io/ranger/internal/conversation"
	"github.com/ricardonunez-io/ranger/internal/dialogue"
	"github.com/ricardonunez-io/ranger/internal/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	resetCommand = "/reset"
	quitCommand  = "/quit"
	chatPrompt   = "you> "
)

// turnHandler is the part of the orchestrator the REPL drives.
type turnHandler interface {
	Handle(ctx context.Context, s *conversation.Session, text string) (dialogue.Reply, error)
}

func newChatCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Long: `Start an interactive session. Ask about metrics, logs, running services,
or scaling. Type /reset to clear the conversation and /quit to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

			registry, err := newRegistry(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			orch := newOrchestrator(*cfg, registry)

			fmt.Fprintln(cmd.OutOrStdout(), "Ask about your services. /reset clears history, /quit exits.")
			return runChat(cmd.Context(), orch, conversation.NewSession(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runChat reads one message per line until EOF, /quit, or cancellation.
func runChat(ctx context.Context, h turnHandler, s *conversation.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case quitCommand:
			return nil
		case resetCommand:
			s.Reset()
			log.Info().Str("session", s.ID).Msg("Conversation history cleared")
			fmt.Fprintln(out, "History cleared.")
			continue
		}

		reply, err := h.Handle(ctx, s, text)
		if errors.Is(err, dialogue.ErrTurnInFlight) {
			fmt.Fprintln(out, "Still working on the previous message.")
			continue
		}
		if err != nil {
			return fmt.Errorf("chat turn failed: %w", err)
		}
		fmt.Fprintln(out, render.Reply(reply))
		fmt.Fprintln(out)
	}
}
