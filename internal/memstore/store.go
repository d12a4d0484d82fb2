// Package memstore is an in-process event store that executes hybrid
// search plans by scanning every event.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/search"
	"github.com/viterin/vek/vek32"
)

// ErrDimensionMismatch is returned when a vector does not match the store dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

var _ search.Catalog = (*Store)(nil)

// Store keeps events in insertion order. Re-upserting an event keeps its slot.
type Store struct {
	mu     sync.RWMutex
	events []models.Event
	words  [][]map[string]struct{}
	norms  []float64
	byID   map[string]int
	dim    int
}

// New creates an empty store for embeddings of the given dimension.
func New(dimension int) *Store {
	return &Store{dim: dimension, byID: make(map[string]int)}
}

// Dimension returns the embedding dimension the store accepts.
func (s *Store) Dimension() int {
	return s.dim
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// UpsertEvent inserts an event or replaces the one with the same ID.
func (s *Store) UpsertEvent(ctx context.Context, event models.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.ID == "" {
		return fmt.Errorf("upsert event: missing id")
	}
	if len(event.Embedding) != s.dim {
		return fmt.Errorf("upsert event %s: %w: got %d, want %d",
			event.ID, ErrDimensionMismatch, len(event.Embedding), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	norm := math.Sqrt(float64(vek32.Dot(event.Embedding, event.Embedding)))
	words := search.WordTrigrams(event.SearchText)

	if i, ok := s.byID[event.ID]; ok {
		event.Created = s.events[i].Created
		s.events[i], s.words[i], s.norms[i] = event, words, norm
		return nil
	}
	if event.Created.IsZero() {
		event.Created = time.Now().UTC()
	}
	s.byID[event.ID] = len(s.events)
	s.events = append(s.events, event)
	s.words = append(s.words, words)
	s.norms = append(s.norms, norm)
	return nil
}

// GetEvent returns a copy of the event with the given ID.
func (s *Store) GetEvent(_ context.Context, id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("get event %s: %w", id, search.ErrNotFound)
	}
	e := s.events[i]
	return &e, nil
}

// CountEvents returns the number of stored events.
func (s *Store) CountEvents(context.Context) (int, error) {
	return s.Len(), nil
}

// Search scores every event that passes the plan's filter and returns the
// best plan.Limit candidates at or above plan.MinScore.
func (s *Store) Search(ctx context.Context, plan search.Plan) ([]models.ScoredCandidate, error) {
	if len(plan.Vector) != s.dim {
		return nil, fmt.Errorf("search: %w: got %d, want %d", ErrDimensionMismatch, len(plan.Vector), s.dim)
	}

	queryNorm := math.Sqrt(float64(vek32.Dot(plan.Vector, plan.Vector)))
	var queryTrgm map[string]struct{}
	if plan.Terms != "" {
		queryTrgm = search.Trigrams(plan.Terms)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ScoredCandidate
	for i, e := range s.events {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		if !plan.Filter.Matches(e) {
			continue
		}

		var semantic float64
		if queryNorm > 0 && s.norms[i] > 0 {
			semantic = float64(vek32.Dot(plan.Vector, e.Embedding)) / (queryNorm * s.norms[i])
		}
		lexical := search.BestExtent(queryTrgm, s.words[i])

		c := search.Score(models.ScoredCandidate{
			Event:         e,
			SemanticScore: semantic,
			LexicalScore:  lexical,
		}, plan.Weights)
		if c.FinalScore < plan.MinScore {
			continue
		}
		out = append(out, c)
	}
	return search.Rank(out, plan.Limit), nil
}
