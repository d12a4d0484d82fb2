// Package pgstore stores events in Postgres and runs hybrid search with
// pgvector cosine distance and pg_trgm word similarity.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/search"
)

var (
	// ErrNotFound indicates the requested event does not exist.
	ErrNotFound = search.ErrNotFound

	// ErrDimensionMismatch indicates a vector that does not fit the embedding column.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Store is a pgxpool-backed event store.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
	logger    *slog.Logger
}

var _ search.Catalog = (*Store)(nil)

// New connects to Postgres at url.
func New(ctx context.Context, url string, dimension int, logger *slog.Logger) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("postgres connection established")
	return &Store{pool: pool, dimension: dimension, logger: logger}, nil
}

// Close releases every pooled connection.
func (s *Store) Close() {
	s.pool.Close()
}

// Dimension returns the embedding column dimension.
func (s *Store) Dimension() int {
	return s.dimension
}

// InitSchema creates the extensions, the events table and its indexes.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL(s.dimension)); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	s.logger.Info("schema initialized", "dimension", s.dimension)
	return nil
}

// Search runs a hybrid search plan as a single SQL statement.
func (s *Store) Search(ctx context.Context, plan search.Plan) ([]models.ScoredCandidate, error) {
	if len(plan.Vector) != s.dimension {
		return nil, fmt.Errorf("search events: %w: got %d, want %d",
			ErrDimensionMismatch, len(plan.Vector), s.dimension)
	}

	rows, err := s.pool.Query(ctx, searchSQL,
		vectorLiteral(plan.Vector),
		plan.Terms,
		plan.Weights.Semantic,
		plan.Weights.Lexical,
		plan.Filter.Year,
		plan.Filter.Month,
		plan.Filter.FreeOnly,
		plan.MinScore,
		plan.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	defer rows.Close()

	out := []models.ScoredCandidate{}
	for rows.Next() {
		var c models.ScoredCandidate
		dest := append(eventDest(&c.Event), &c.SemanticScore, &c.LexicalScore)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, search.Score(c, plan.Weights))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return out, nil
}

// UpsertEvent inserts an event or updates the row with the same ID.
// Insertion order (seq) and creation time survive updates.
func (s *Store) UpsertEvent(ctx context.Context, e models.Event) error {
	if len(e.Embedding) != s.dimension {
		return fmt.Errorf("upsert event %s: %w: got %d, want %d",
			e.ID, ErrDimensionMismatch, len(e.Embedding), s.dimension)
	}

	_, err := s.pool.Exec(ctx, upsertSQL,
		e.ID, e.Name, e.Domain, e.Date, e.Time, e.Venue, e.Mode, e.RegistrationFee,
		e.Speakers, e.FacultyCoordinators, e.StudentCoordinators, e.Perks,
		e.Collaboration, e.Description, e.SearchText, vectorLiteral(e.Embedding),
		e.Year, e.Month, e.IsFree,
	)
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", e.ID, err)
	}
	return nil
}

// GetEvent returns one event by ID, or ErrNotFound.
func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	err := s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id).Scan(eventDest(&e)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// CountEvents returns the number of stored events.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func eventDest(e *models.Event) []any {
	return []any{
		&e.ID, &e.Name, &e.Domain, &e.Date, &e.Time, &e.Venue, &e.Mode,
		&e.RegistrationFee, &e.Speakers, &e.FacultyCoordinators, &e.StudentCoordinators,
		&e.Perks, &e.Collaboration, &e.Description, &e.Year, &e.Month, &e.IsFree, &e.Created,
	}
}

// vectorLiteral renders v in pgvector's text input form, e.g. [0.1,0.2].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
