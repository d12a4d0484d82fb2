package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/eventqa/internal/service"
	"github.com/raphaelgruber/eventqa/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the event assistant",
	Long: `Start an interactive chat. On a terminal this opens a full-screen view;
otherwise questions are read line by line from stdin.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRemote: "true"},
	RunE:        runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.Run(asker())
	}
	return chatREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), asker())
}

// chatREPL answers one question per input line until EOF or "exit".
func chatREPL(ctx context.Context, in io.Reader, out io.Writer, asker tui.Asker) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		switch q {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		ans, err := asker.Ask(ctx, q)
		if err != nil {
			slog.Debug("chat question failed", "error", err)
			fmt.Fprintln(out, service.UserMessage(err))
			continue
		}
		fmt.Fprintf(out, "%s\n\n", ans.Text)
	}
}
