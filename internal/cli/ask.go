package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/eventqa/internal/service"
)

var askOutputFile string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question and get an LLM-written answer",
	Long: `Ask a question about events and get an answer written from the best matches.

Years, months and "free" in the question narrow the candidates before ranking.
When nothing matches, no model call is made.

Examples:
  eventqa ask "free events in March 2024"
  eventqa ask "Who is speaking at the robotics expo?"
  eventqa ask "technical workshops this year" -o answer.md
  eventqa ask "music nights" --server http://localhost:8080`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{annotationRemote: "true"},
	RunE:        runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askOutputFile, "output", "o", "", "write answer to file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	ans, err := asker().Ask(cmd.Context(), question)
	if err != nil {
		logger.Debug("ask failed", "error", err)
		return fmt.Errorf("%s: %w", service.UserMessage(err), err)
	}

	if askOutputFile != "" {
		if err := os.WriteFile(askOutputFile, []byte(ans.Text+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Answer written to %s\n", askOutputFile)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
	return nil
}
