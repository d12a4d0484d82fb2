package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger builds the process logger from cfg: readable text on stderr
// and, when LogFile is set and writable, JSON lines in that file.
// QuietConsole keeps stderr to warnings and errors.
// The returned cleanup closes the file.
func SetupLogger(cfg Config) (*slog.Logger, func() error) {
	noop := func() error { return nil }
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	consoleOpts := opts
	if cfg.QuietConsole {
		consoleOpts = &slog.HandlerOptions{Level: max(cfg.LogLevel, slog.LevelWarn)}
	}
	console := slog.NewTextHandler(os.Stderr, consoleOpts)

	if cfg.LogFile == "" {
		return slog.New(console).With("app", "eventqa"), noop
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(console).With("app", "eventqa")
		logger.Error("failed to open log file, using stderr only", "error", err, "file", cfg.LogFile)
		return logger, noop
	}

	logger := slog.New(slogmulti.Fanout(console, slog.NewJSONHandler(file, opts))).With("app", "eventqa")
	return logger, file.Close
}

// SetupLoggerWithWriters fans out to arbitrary writers. Used by tests.
func SetupLoggerWithWriters(console, jsonOut io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(console, opts),
		slog.NewJSONHandler(jsonOut, opts),
	))
}
