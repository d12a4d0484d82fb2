package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/raphaelgruber/eventqa/internal/memstore"
	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapEncoder returns fixed vectors per text.
type mapEncoder struct {
	vectors map[string][]float32
	dim     int
	err     error
}

func (m *mapEncoder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, m.dim), nil
}

func (m *mapEncoder) Dimension() int { return m.dim }

type failingStore struct{ err error }

func (f failingStore) Search(ctx context.Context, _ search.Plan) ([]models.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, f.err
}
func (failingStore) UpsertEvent(context.Context, models.Event) error { return nil }
func (failingStore) Dimension() int                                  { return 3 }

func newStore(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New(3)
	events := []models.Event{
		{ID: "expo", Name: "Robotics Expo", Embedding: []float32{0.8, 0.6, 0}, SearchText: "robotics expo", Year: 2024, Month: 2},
		{ID: "ai-101", Name: "AI Workshop", Embedding: []float32{1, 0, 0}, SearchText: "ai workshop technical", Year: 2024, Month: 3, IsFree: true},
		{ID: "ai-201", Name: "AI Workshop II", Embedding: []float32{1, 0, 0}, SearchText: "ai workshop technical", Year: 2024, Month: 4},
	}
	for _, e := range events {
		require.NoError(t, s.UpsertEvent(context.Background(), e))
	}
	return s
}

func TestNewRejectsDimensionMismatch(t *testing.T) {
	_, err := New(&mapEncoder{dim: 4}, memstore.New(3), DefaultOptions(), nil)
	assert.Error(t, err)

	_, err = New(&mapEncoder{dim: 3}, memstore.New(3), Options{Weights: search.Weights{}}, nil)
	assert.Error(t, err)
}

func TestRetrieveRanksBestFirst(t *testing.T) {
	enc := &mapEncoder{dim: 3, vectors: map[string][]float32{
		"Give me details about the AI workshop": {1, 0, 0},
	}}
	r, err := New(enc, newStore(t), DefaultOptions(), nil)
	require.NoError(t, err)

	got, err := r.Retrieve(context.Background(), "Give me details about the AI workshop", "AI workshop", models.QueryFilter{}, 5)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Equal scores keep store order.
	assert.Equal(t, "ai-101", got[0].Event.ID)
	assert.Equal(t, "ai-201", got[1].Event.ID)
	assert.Equal(t, "expo", got[2].Event.ID)
	assert.Equal(t, got[0].FinalScore, got[1].FinalScore)
	assert.Greater(t, got[1].FinalScore, got[2].FinalScore)
}

func TestRetrieveAppliesFilterAndTopK(t *testing.T) {
	enc := &mapEncoder{dim: 3, vectors: map[string][]float32{"q": {1, 0, 0}}}
	r, err := New(enc, newStore(t), DefaultOptions(), nil)
	require.NoError(t, err)

	month := 3
	got, err := r.Retrieve(context.Background(), "q", "ai", models.QueryFilter{Month: &month, FreeOnly: true}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ai-101", got[0].Event.ID)

	got, err = r.Retrieve(context.Background(), "q", "", models.QueryFilter{}, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRetrieveEmpty(t *testing.T) {
	enc := &mapEncoder{dim: 3, vectors: map[string][]float32{"q": {1, 0, 0}}}
	r, err := New(enc, memstore.New(3), DefaultOptions(), nil)
	require.NoError(t, err)

	got, err := r.Retrieve(context.Background(), "q", "anything", models.QueryFilter{}, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRetrieveEncoderFailure(t *testing.T) {
	enc := &mapEncoder{dim: 3, err: errors.New("model not loaded")}
	r, err := New(enc, newStore(t), DefaultOptions(), nil)
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "q", "q", models.QueryFilter{}, 5)
	assert.ErrorIs(t, err, ErrEncoderUnavailable)
}

func TestRetrieveStoreFailure(t *testing.T) {
	r, err := New(&mapEncoder{dim: 3}, failingStore{err: errors.New("connection reset")}, DefaultOptions(), nil)
	require.NoError(t, err)

	_, err = r.RetrieveVector(context.Background(), []float32{1, 0, 0}, "q", models.QueryFilter{}, 5)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorContains(t, err, "connection reset")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.RetrieveVector(ctx, []float32{1, 0, 0}, "q", models.QueryFilter{}, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}
