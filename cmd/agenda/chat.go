package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/spf13/cobra"

	"github.com/hrygo/agenda/plugin/ai/schedule"
	"github.com/hrygo/agenda/plugin/ai/session"
	"github.com/hrygo/agenda/plugin/ai/timeout"
	"github.com/hrygo/agenda/server"
)

// consoleMessenger prints every reply as soon as the arbiter sends it.
type consoleMessenger struct {
	w io.Writer
}

func (m consoleMessenger) Send(_ context.Context, _ string, text string) error {
	_, err := fmt.Fprintf(m.w, "Asistente: %s\n", text)
	return err
}

func newChatCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Book a meeting interactively from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			st, err := openStore(ctx, p)
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			c, err := server.NewComponents(ctx, p, st, consoleMessenger{w: out})
			if err != nil {
				return err
			}
			defer c.Close()

			if sessionID == "" {
				sessionID = shortuuid.New()
			} else if err := printHistory(ctx, out, session.NewSessionRecovery(c.Sessions), sessionID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Sesión %s. Escribe la fecha de tu cita (Ctrl+D para salir).\n", sessionID)
			return runChat(ctx, c.Arbiter, sessionID, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session to resume, a new one by default")
	return cmd
}

// historyLines is how much of a resumed conversation is shown.
const historyLines = 6

func printHistory(ctx context.Context, w io.Writer, recovery *session.SessionRecovery, sessionID string) error {
	msgs, err := recovery.GetRecentMessages(ctx, sessionID, historyLines)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		speaker := "Asistente"
		if m.Role == session.RoleUser {
			speaker = "Cliente"
		}
		fmt.Fprintf(w, "%s: %s\n", speaker, m.Content)
	}
	return nil
}

// runChat feeds every non-empty line to the arbiter until EOF or ctx is done.
func runChat(ctx context.Context, arbiter *schedule.Arbiter, sessionID string, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, timeout.TurnTimeout)
		_, err := arbiter.HandleMessage(turnCtx, sessionID, text)
		cancel()
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}
