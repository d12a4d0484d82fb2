// Package service wires the retrieval pipeline into question answering and ingestion.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/eventqa/internal/contextbuilder"
	"github.com/raphaelgruber/eventqa/internal/metrics"
	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/query"
	"github.com/raphaelgruber/eventqa/internal/retriever"
	"github.com/raphaelgruber/eventqa/internal/search"
)

const (
	// NotFoundMessage is the answer when no event survives retrieval.
	NotFoundMessage = "I do not have enough information to answer that."

	// UnavailableMessage is the only failure text shown to end users.
	UnavailableMessage = "Sorry, the event assistant is unavailable right now. Please try again later."

	// DefaultGenerateTimeout bounds a single answer generation.
	DefaultGenerateTimeout = 60 * time.Second
)

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("question is empty")

// Generator turns a question and its assembled event context into an answer.
// llm.Model satisfies it.
type Generator interface {
	Answer(ctx context.Context, question, eventContext string) (string, error)
}

// QueryOptions configures a QueryService.
type QueryOptions struct {
	TopK            int
	GenerateTimeout time.Duration
}

// QueryService answers free-text questions about events.
type QueryService struct {
	retriever *retriever.Retriever
	refiner   *query.Refiner
	generator Generator
	metrics   *metrics.Collector
	opts      QueryOptions
	logger    *slog.Logger
}

// NewQueryService creates a QueryService. A nil generator makes Ask return the
// assembled context itself. A nil collector disables metrics.
func NewQueryService(
	r *retriever.Retriever,
	refiner *query.Refiner,
	generator Generator,
	collector *metrics.Collector,
	opts QueryOptions,
	logger *slog.Logger,
) *QueryService {
	if opts.TopK <= 0 {
		opts.TopK = search.DefaultLimit
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{
		retriever: r,
		refiner:   refiner,
		generator: generator,
		metrics:   collector,
		opts:      opts,
		logger:    logger,
	}
}

// SearchResult is everything retrieval produced for one question.
type SearchResult struct {
	Question   string                   `json:"question"`
	Filter     models.QueryFilter       `json:"filter"`
	Terms      string                   `json:"terms"`
	Candidates []models.ScoredCandidate `json:"candidates"`
	Context    contextbuilder.Context   `json:"-"`
}

// Answer is the reply to a question.
type Answer struct {
	Text    string `json:"answer"`
	Found   bool   `json:"found"`
	Results int    `json:"results"`
}

// Search runs the retrieval half of the pipeline. topK <= 0 uses the
// configured default.
func (s *QueryService) Search(ctx context.Context, question string, topK int) (*SearchResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if topK <= 0 {
		topK = s.opts.TopK
	}

	filter := query.ExtractFilters(question)

	var (
		terms string
		vec   []float32
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		done := s.metrics.Time(metrics.OpTermExtract)
		terms = s.refiner.Refine(gctx, question)
		done(nil)
		return nil
	})
	g.Go(func() error {
		done := s.metrics.Time(metrics.OpEmbedding)
		var err error
		vec, err = s.retriever.Embed(gctx, question)
		done(err)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	done := s.metrics.Time(metrics.OpStoreSearch)
	candidates, err := s.retriever.RetrieveVector(ctx, vec, terms, filter, topK)
	done(err)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Question:   question,
		Filter:     filter,
		Terms:      terms,
		Candidates: candidates,
		Context:    contextbuilder.Assemble(candidates),
	}, nil
}

// Ask answers a question from the event catalog. The generator is never
// called when nothing relevant was found.
func (s *QueryService) Ask(ctx context.Context, question string) (ans Answer, err error) {
	start := time.Now()
	var res *SearchResult
	defer func() {
		s.metrics.RecordTiming(metrics.OpAsk, time.Since(start), err)
		s.logInteraction(question, res, ans, err, time.Since(start))
	}()

	res, err = s.Search(ctx, question, s.opts.TopK)
	if err != nil {
		s.metrics.RecordOutcome(metrics.OutcomeFailed)
		return Answer{}, err
	}

	if res.Context.IsEmpty() {
		s.metrics.RecordOutcome(metrics.OutcomeNotFound)
		return Answer{Text: NotFoundMessage}, nil
	}

	text, err := s.generate(ctx, res)
	if err != nil {
		s.metrics.RecordOutcome(metrics.OutcomeFailed)
		return Answer{}, err
	}

	s.metrics.RecordOutcome(metrics.OutcomeAnswered)
	return Answer{Text: text, Found: true, Results: res.Context.Len()}, nil
}

func (s *QueryService) generate(ctx context.Context, res *SearchResult) (string, error) {
	if s.generator == nil {
		return res.Context.String(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.GenerateTimeout)
	defer cancel()

	done := s.metrics.Time(metrics.OpGenerate)
	text, err := s.generator.Answer(ctx, res.Question, res.Context.String())
	done(err)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return res.Context.String(), nil
	}
	return text, nil
}

func (s *QueryService) logInteraction(question string, res *SearchResult, ans Answer, err error, d time.Duration) {
	attrs := []any{
		"question", question,
		"found", ans.Found,
		"results", ans.Results,
		"duration_ms", d.Milliseconds(),
	}
	if res != nil {
		attrs = append(attrs, "filter", res.Filter.String(), "terms", res.Terms)
	}
	if err != nil {
		s.logger.Error("question failed", append(attrs, "error", err)...)
		return
	}
	s.logger.Info("question answered", attrs...)
}

// UserMessage returns the text to show an end user for err.
// Internal failure details never leave the process.
func UserMessage(err error) string {
	if errors.Is(err, ErrEmptyQuestion) {
		return "Please enter a question."
	}
	return UnavailableMessage
}
