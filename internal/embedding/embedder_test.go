package embedding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"
)

// fakeEmbedder returns vectors of a fixed size derived from text length.
func fakeEmbedder(t *testing.T, dim int, calls *atomic.Int32, err error) embeddings.Embedder {
	t.Helper()
	client := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		if calls != nil {
			calls.Add(1)
		}
		if err != nil {
			return nil, err
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			v := make([]float32, dim)
			v[0] = float32(len(text))
			out[i] = v
		}
		return out, nil
	})
	emb, newErr := embeddings.NewEmbedder(client)
	require.NoError(t, newErr)
	return emb
}

func TestLangChainEmbed(t *testing.T) {
	enc := NewLangChain(fakeEmbedder(t, 4, nil, nil), "fake", 4, nil)

	v, err := enc.Embed(context.Background(), "robotics")
	require.NoError(t, err)
	assert.Len(t, v, 4)
	assert.Equal(t, float32(8), v[0])
	assert.Equal(t, "fake", enc.Model())
	assert.Equal(t, 4, enc.Dimension())

	batch, err := enc.EmbedBatch(context.Background(), []string{"a", "bb"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, float32(2), batch[1][0])

	empty, err := enc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLangChainDimensionMismatch(t *testing.T) {
	enc := NewLangChain(fakeEmbedder(t, 3, nil, nil), "fake", 384, nil)

	_, err := enc.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestLangChainError(t *testing.T) {
	enc := NewLangChain(fakeEmbedder(t, 4, nil, errors.New("connection refused")), "fake", 4, nil)

	_, err := enc.Embed(context.Background(), "text")
	assert.ErrorContains(t, err, "connection refused")
}

func TestCached(t *testing.T) {
	var calls atomic.Int32
	base := NewLangChain(fakeEmbedder(t, 4, &calls, nil), "fake", 4, nil)
	enc, err := NewCached(base, 8)
	require.NoError(t, err)

	first, err := enc.Embed(context.Background(), "hackathon")
	require.NoError(t, err)
	second, err := enc.Embed(context.Background(), "hackathon")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	batch, err := enc.EmbedBatch(context.Background(), []string{"hackathon", "expo"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, first, batch[0])
	assert.Equal(t, float32(4), batch[1][0])
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, enc.Len())
	assert.Equal(t, 4, enc.Dimension())
}

func TestNewCachedRejectsBadSize(t *testing.T) {
	_, err := NewCached(NewLangChain(fakeEmbedder(t, 4, nil, nil), "fake", 4, nil), 0)
	assert.Error(t, err)
}
