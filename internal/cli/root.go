// Package cli provides the command-line interface for eventqa.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/eventqa/internal/app"
	"github.com/raphaelgruber/eventqa/internal/client"
	"github.com/raphaelgruber/eventqa/internal/config"
	"github.com/raphaelgruber/eventqa/internal/tui"
)

// connectTimeout bounds store and provider setup.
const connectTimeout = 30 * time.Second

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	// Global state set up by PersistentPreRunE
	cfg         config.Config
	logger      *slog.Logger
	closeLogger func() error
	application *app.App
	remote      *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eventqa",
	Short: "Ask questions about university and club events",
	Long: `eventqa answers free-text questions about events from an event catalog.

Questions are filtered by the year, month and fee they mention, then matched
against events by meaning and by wording. The best matches are handed to the
configured LLM, which writes the answer.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		cfg.QuietConsole = !verbose
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, closeLogger = config.SetupLogger(cfg)
		slog.SetDefault(logger)

		// Remote-capable commands skip local store and model setup.
		if serverURL != "" && cmd.Annotations[annotationRemote] == "true" {
			remote = client.New(serverURL)
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
		defer cancel()

		var err error
		application, err = app.New(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		return application.Seed(ctx)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			if err := application.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
		}
		if closeLogger != nil {
			_ = closeLogger()
		}
	},
}

// annotationRemote marks commands that can run against --server.
const annotationRemote = "remote"

// asker returns the remote client when --server is in use, else the local query service.
func asker() tui.Asker {
	if remote != nil {
		return remote
	}
	return application.Query
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", os.Getenv("EVENTQA_SERVER_URL"),
		"ask a running eventqa-server instead of the local store (ask and chat only)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}
