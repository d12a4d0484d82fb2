// Package main provides the HTTP chat server for eventqa.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/eventqa/internal/app"
	"github.com/raphaelgruber/eventqa/internal/config"
	"github.com/raphaelgruber/eventqa/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	seedFile := flag.String("seed", "", "import events from this YAML file on startup")
	flag.Parse()

	cfg := config.Load()
	if *seedFile != "" {
		cfg.SeedFile = *seedFile
	}

	logger, closeLog := config.SetupLogger(cfg)
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting eventqa-server",
		"port", cfg.ServerPort,
		"store", cfg.Store,
		"embed_provider", cfg.EmbedProvider,
		"llm_provider", cfg.LLMProvider)

	// Create app with all dependencies
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		cancel()
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()
	err = a.Seed(ctx)
	cancel()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(a, fmt.Sprintf(":%d", cfg.ServerPort), logger)
	logger.Info("chat endpoint available", "url", fmt.Sprintf("http://localhost:%d/api/chat", cfg.ServerPort))
	return srv.Run(ctx)
}
