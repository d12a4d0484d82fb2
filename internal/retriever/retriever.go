// Package retriever runs hybrid semantic and lexical retrieval over an event store.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/search"
)

// DefaultEmbedTimeout bounds the single query-embedding call.
const DefaultEmbedTimeout = 10 * time.Second

var (
	// ErrEncoderUnavailable means the query could not be embedded.
	// There is no lexical-only fallback.
	ErrEncoderUnavailable = errors.New("embedding encoder unavailable")

	// ErrStoreUnavailable means the event store request failed.
	ErrStoreUnavailable = errors.New("event store unavailable")
)

// Encoder embeds query text. embedding.Encoder satisfies it.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Options tunes ranking. They are fixed at construction, never per call.
type Options struct {
	Weights      search.Weights
	MinScore     float64
	EmbedTimeout time.Duration
}

// DefaultOptions returns the standard ranking options.
func DefaultOptions() Options {
	return Options{
		Weights:      search.DefaultWeights,
		MinScore:     search.DefaultMinScore,
		EmbedTimeout: DefaultEmbedTimeout,
	}
}

// Retriever combines an encoder and a store.
type Retriever struct {
	encoder Encoder
	store   search.Store
	opts    Options
	logger  *slog.Logger
}

// New creates a Retriever. The encoder and store must agree on the embedding dimension.
func New(encoder Encoder, store search.Store, opts Options, logger *slog.Logger) (*Retriever, error) {
	if encoder == nil || store == nil {
		return nil, fmt.Errorf("retriever requires an encoder and a store")
	}
	if encoder.Dimension() != store.Dimension() {
		return nil, fmt.Errorf("encoder dimension %d does not match store dimension %d",
			encoder.Dimension(), store.Dimension())
	}
	if err := opts.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}
	if opts.MinScore < 0 || opts.MinScore > 1 {
		return nil, fmt.Errorf("min score out of range: %v", opts.MinScore)
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = DefaultEmbedTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{encoder: encoder, store: store, opts: opts, logger: logger}, nil
}

// Embed turns the raw question into a query vector under the embed timeout.
func (r *Retriever) Embed(ctx context.Context, rawQuery string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.EmbedTimeout)
	defer cancel()

	vec, err := r.encoder.Embed(ctx, rawQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoderUnavailable, err)
	}
	if len(vec) != r.encoder.Dimension() {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d",
			ErrEncoderUnavailable, len(vec), r.encoder.Dimension())
	}
	return vec, nil
}

// Retrieve embeds rawQuery and returns at most topK candidates, best first.
func (r *Retriever) Retrieve(
	ctx context.Context,
	rawQuery, terms string,
	filter models.QueryFilter,
	topK int,
) ([]models.ScoredCandidate, error) {
	vec, err := r.Embed(ctx, rawQuery)
	if err != nil {
		return nil, err
	}
	return r.RetrieveVector(ctx, vec, terms, filter, topK)
}

// RetrieveVector is Retrieve with an already computed query vector.
// An empty store or a filter matching nothing yields an empty slice and no error.
func (r *Retriever) RetrieveVector(
	ctx context.Context,
	vec []float32,
	terms string,
	filter models.QueryFilter,
	topK int,
) ([]models.ScoredCandidate, error) {
	plan, err := search.NewBuilder().
		Filter(filter).
		Semantic(vec).
		Lexical(terms).
		Weighted(r.opts.Weights).
		MinScore(r.opts.MinScore).
		Limit(topK).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}

	start := time.Now()
	candidates, err := r.store.Search(ctx, plan)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("search events: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	candidates = search.Rank(candidates, plan.Limit)
	r.logger.Debug("retrieved candidates",
		"filter", filter.String(),
		"terms", plan.Terms,
		"count", len(candidates),
		"duration_ms", time.Since(start).Milliseconds())

	if candidates == nil {
		candidates = []models.ScoredCandidate{}
	}
	return candidates, nil
}
