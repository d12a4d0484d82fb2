// Package server exposes the event assistant over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raphaelgruber/eventqa/internal/app"
	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/search"
	"github.com/raphaelgruber/eventqa/internal/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server serves the chat API on top of an App.
type Server struct {
	app    *app.App
	logger *slog.Logger
	http   *http.Server
}

// New creates a server listening on addr.
func New(a *app.App, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{app: a, logger: logger}
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second, // long for LLM responses
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/events", s.handleAddEvent)
	mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.app.Metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	return LoggingMiddleware(s.logger)(RecoverMiddleware(s.logger)(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Answer string `json:"answer"`
	Found  bool   `json:"found"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ans, err := s.app.Query.Ask(r.Context(), req.Query)
	if errors.Is(err, service.ErrEmptyQuestion) {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if err != nil {
		s.logger.Error("chat failed",
			"query", truncate(req.Query, maxArgLogLen),
			"request_id", w.Header().Get(RequestIDHeader),
			"error", err)
		writeJSON(w, http.StatusOK, chatResponse{Answer: service.UserMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Answer: ans.Text, Found: ans.Found})
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := s.app.Ingest.Add(r.Context(), in)
	if errors.Is(err, service.ErrInvalidEvent) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("add event failed", "name", in.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store event")
		return
	}

	writeJSON(w, http.StatusCreated, publicEvent(event))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.app.Store.GetEvent(r.Context(), r.PathValue("id"))
	if errors.Is(err, search.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		s.logger.Error("get event failed", "id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	writeJSON(w, http.StatusOK, publicEvent(*event))
}

type statsResponse struct {
	Events  int `json:"events"`
	Metrics any `json:"metrics"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.app.Store.CountEvents(r.Context())
	if err != nil {
		s.logger.Warn("count events failed", "error", err)
		count = -1
	}
	writeJSON(w, http.StatusOK, statsResponse{Events: count, Metrics: s.app.Metrics.Snapshot()})
}

// publicEvent drops the fields owned by ingestion.
func publicEvent(e models.Event) models.Event {
	e.Embedding = nil
	e.SearchText = ""
	return e
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
