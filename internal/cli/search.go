package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/eventqa/internal/search"
)

var (
	searchLimit   int
	searchContext bool
)

var searchCmd = &cobra.Command{
	Use:   "search <question>",
	Short: "Rank matching events without LLM synthesis",
	Long: `Search events using the hybrid semantic and fuzzy keyword ranking.

Shows the extracted filters and keywords and every match with its component
scores. Use 'ask' for an LLM-written answer.

Examples:
  eventqa search "AI workshop"
  eventqa search "free events in March 2024" -n 10
  eventqa search "music night" --context`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", search.DefaultLimit, "max results")
	searchCmd.Flags().BoolVar(&searchContext, "context", false, "print the context handed to the LLM")
}

func runSearch(cmd *cobra.Command, args []string) error {
	res, err := application.Query.Search(cmd.Context(), strings.Join(args, " "), searchLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Filters: %s\nKeywords: %s\n\n", res.Filter, res.Terms)

	if searchContext {
		if res.Context.IsEmpty() {
			fmt.Fprintln(out, "(empty context)")
			return nil
		}
		fmt.Fprintln(out, res.Context.String())
		return nil
	}

	if len(res.Candidates) == 0 {
		fmt.Fprintln(out, "No matching events.")
		return nil
	}

	fmt.Fprintf(out, "Found %d events:\n\n", len(res.Candidates))
	for i, c := range res.Candidates {
		fmt.Fprintf(out, "%d. %s [%s] %s\n", i+1, c.Event.Name, c.Event.Domain, c.Event.Date)
		fmt.Fprintf(out, "   score %.2f (semantic %.2f, keyword %.2f)\n",
			c.FinalScore, c.SemanticScore, c.LexicalScore)
		if verbose && c.Event.Venue != "" {
			fmt.Fprintf(out, "   Venue: %s\n", c.Event.Venue)
		}
		fmt.Fprintln(out)
	}
	return nil
}
