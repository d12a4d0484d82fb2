package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var importPlain bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import events from a YAML file",
	Long: `Import events from a YAML file with a top-level "events" list.

Each event needs name_of_event, event_domain, date_of_event (YYYY-MM-DD) and
description_insights. Events that fail validation are reported and skipped.
Re-importing an event with the same name and date replaces it.

Examples:
  eventqa import events.yaml
  eventqa import events.yaml --plain`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importPlain, "plain", false, "print a summary instead of a progress bar")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	if !importPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		return RunImportProgress(cmd.Context(), application.Ingest, path)
	}

	res, err := application.Ingest.ImportFile(cmd.Context(), path, nil)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderImportResult(defaultTheme, res))
	return nil
}
