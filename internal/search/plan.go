// Package search describes a hybrid retrieval request independently of the
// store that executes it.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/raphaelgruber/eventqa/internal/models"
)

const (
	// DefaultLimit is how many candidates a plan returns unless told otherwise.
	DefaultLimit = 5
	// MaxLimit caps the candidate list regardless of the requested limit.
	MaxLimit = 10
	// DefaultMinScore drops candidates that neither look like the question
	// nor share its wording.
	DefaultMinScore = 0.30
)

// Weights splits the final score between the semantic and lexical signals.
type Weights struct {
	Semantic float64 `json:"semantic"`
	Lexical  float64 `json:"lexical"`
}

// DefaultWeights favours meaning over wording.
var DefaultWeights = Weights{Semantic: 0.65, Lexical: 0.35}

// Validate checks that both weights are usable.
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Lexical < 0 || math.IsNaN(w.Semantic) || math.IsNaN(w.Lexical) {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if w.Semantic+w.Lexical <= 0 {
		return fmt.Errorf("weights must not both be zero")
	}
	return nil
}

// Combine returns the weighted final score for one candidate.
func (w Weights) Combine(semantic, lexical float64) float64 {
	return w.Semantic*semantic + w.Lexical*lexical
}

// Plan is a fully specified hybrid search. Stores execute it as a single request.
type Plan struct {
	Filter   models.QueryFilter
	Vector   []float32
	Terms    string
	Weights  Weights
	MinScore float64
	Limit    int
}

// Store executes plans and accepts events from ingestion.
type Store interface {
	Search(ctx context.Context, plan Plan) ([]models.ScoredCandidate, error)
	UpsertEvent(ctx context.Context, event models.Event) error
	Dimension() int
}

// Catalog is a Store that also supports direct lookups.
type Catalog interface {
	Store
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CountEvents(ctx context.Context) (int, error)
}

var (
	// ErrEmptyVector is returned when a plan is built without a query embedding.
	ErrEmptyVector = errors.New("plan has no query vector")

	// ErrNotFound is returned by Catalog lookups for unknown IDs.
	ErrNotFound = errors.New("event not found")
)

// ClampUnit bounds a similarity to [0,1]. NaN maps to 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
