// Package llm wraps langchaingo chat models for search-term extraction and
// answer generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/eventqa/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrDisabled is returned by NewModel when the LLM provider is "none".
var ErrDisabled = errors.New("llm disabled")

// Model wraps a langchaingo LLM.
type Model struct {
	llm       llms.Model
	modelName string
	logger    *slog.Logger
}

// NewModel creates a chat model for the configured provider.
func NewModel(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Model, error) {
	var (
		model llms.Model
		err   error
	)

	switch cfg.LLMProvider {
	case config.ProviderNone:
		return nil, ErrDisabled

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		model, err = bedrock.New(
			bedrock.WithModel(cfg.LLMModel),
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
		)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", cfg.LLMProvider, err)
	}

	return NewFromLLM(model, cfg.LLMModel, logger), nil
}

// NewFromLLM wraps an existing langchaingo model.
func NewFromLLM(model llms.Model, name string, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{llm: model, modelName: name, logger: logger}
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string, opts ...llms.CallOption) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		m.logger.Warn("generation failed", "model", m.modelName,
			"duration_ms", time.Since(start).Milliseconds(), "error", err)
		return "", fmt.Errorf("generate with system: %w", wrapFatalError(err))
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	m.logger.Debug("generation complete", "model", m.modelName,
		"duration_ms", time.Since(start).Milliseconds())
	return strings.TrimSpace(response.Choices[0].Content), nil
}

const extractTermsPrompt = `You extract search keywords from questions about university and club events.
Reply with ONLY the keywords: a short phrase of at most eight words, lowercase, on a single line.
Keep event names, topics, domains, venues, speakers and organisers.
Drop dates, months, years, fees, question words and filler.
Never explain, greet, apologise or add punctuation.`

// ExtractTerms reduces a question to a keyword phrase for fuzzy matching.
// Callers are expected to fall back to the raw question on error.
func (m *Model) ExtractTerms(ctx context.Context, question string) (string, error) {
	return m.GenerateWithSystem(ctx, extractTermsPrompt, question,
		llms.WithTemperature(0),
		llms.WithMaxTokens(32),
	)
}

const answerPrompt = `You are a helpful university knowledge assistant.
Answer the question ONLY using the information provided.
If the information is insufficient, say so clearly.
Use markdown formatting. When several events are relevant, list them in a table
in the order given, most relevant first.`

// Answer generates a reply to question grounded in eventContext.
func (m *Model) Answer(ctx context.Context, question, eventContext string) (string, error) {
	userPrompt := fmt.Sprintf(`Question:
%s

Information:
%s

Answer:`, question, eventContext)

	return m.GenerateWithSystem(ctx, answerPrompt, userPrompt)
}
