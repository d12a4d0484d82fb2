// Package embedding turns text into fixed-dimension vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/eventqa/internal/config"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/embeddings/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Encoder embeds text. Vectors always have exactly Dimension() elements,
// which must equal the dimension events were indexed with.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimension() int
}

// ErrDimensionMismatch is returned when the model yields vectors of the wrong size.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// LangChain wraps a langchaingo embedder with dimension validation.
type LangChain struct {
	embedder  embeddings.Embedder
	modelName string
	dimension int
	logger    *slog.Logger
}

var _ Encoder = (*LangChain)(nil)

// New creates an encoder for the configured provider.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*LangChain, error) {
	var (
		emb embeddings.Embedder
		err error
	)

	switch cfg.EmbedProvider {
	case config.ProviderOllama:
		llm, ollamaErr := ollama.New(
			ollama.WithModel(cfg.EmbedModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if ollamaErr != nil {
			return nil, fmt.Errorf("create ollama client: %w", ollamaErr)
		}
		emb, err = embeddings.NewEmbedder(llm)

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		llm, openaiErr := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.EmbedModel),
		)
		if openaiErr != nil {
			return nil, fmt.Errorf("create openai client: %w", openaiErr)
		}
		emb, err = embeddings.NewEmbedder(llm)

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		emb, err = bedrock.NewBedrock(
			bedrock.WithModel(cfg.EmbedModel),
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
		)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbedProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s embedder: %w", cfg.EmbedProvider, err)
	}

	return NewLangChain(emb, cfg.EmbedModel, cfg.EmbedDimension, logger), nil
}

// NewLangChain wraps an existing langchaingo embedder.
func NewLangChain(emb embeddings.Embedder, model string, dimension int, logger *slog.Logger) *LangChain {
	if logger == nil {
		logger = slog.Default()
	}
	return &LangChain{embedder: emb, modelName: model, dimension: dimension, logger: logger}
}

// Embed generates the vector for one text.
func (e *LangChain) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates vectors for several texts in one request.
func (e *LangChain) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	start := time.Now()
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	duration := time.Since(start)
	if err != nil {
		e.logger.Warn("embedding failed", "model", e.modelName, "texts", len(texts),
			"duration_ms", duration.Milliseconds(), "error", err)
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != e.dimension {
			return nil, fmt.Errorf("embed text %d: %w: got %d, want %d (model: %s)",
				i, ErrDimensionMismatch, len(v), e.dimension, e.modelName)
		}
	}

	e.logger.Debug("embedding complete", "model", e.modelName, "texts", len(texts),
		"duration_ms", duration.Milliseconds())
	return vectors, nil
}

// Model returns the embedding model name.
func (e *LangChain) Model() string {
	return e.modelName
}

// Dimension returns the vector size this encoder guarantees.
func (e *LangChain) Dimension() int {
	return e.dimension
}
