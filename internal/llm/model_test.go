package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/raphaelgruber/eventqa/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

// recordingLLM captures the messages and options of the last call.
type recordingLLM struct {
	reply    string
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (r *recordingLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	r.messages = messages
	for _, o := range options {
		o(&r.opts)
	}
	if r.err != nil {
		return nil, r.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: r.reply}}}, nil
}

func (r *recordingLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, r, prompt, options...)
}

func textOf(t *testing.T, m llms.MessageContent) string {
	t.Helper()
	require.Len(t, m.Parts, 1)
	part, ok := m.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestExtractTerms(t *testing.T) {
	rec := &recordingLLM{reply: "  ai workshop\n"}
	m := NewFromLLM(rec, "test-model", nil)

	terms, err := m.ExtractTerms(context.Background(), "Give me details about the AI workshop")
	require.NoError(t, err)
	assert.Equal(t, "ai workshop", terms)

	require.Len(t, rec.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, rec.messages[0].Role)
	assert.Contains(t, textOf(t, rec.messages[0]), "ONLY the keywords")
	assert.Equal(t, "Give me details about the AI workshop", textOf(t, rec.messages[1]))
	assert.Equal(t, 0.0, rec.opts.Temperature)
	assert.Equal(t, 32, rec.opts.MaxTokens)
}

func TestAnswerIncludesContext(t *testing.T) {
	rec := &recordingLLM{reply: "The AI Workshop is on 07-Mar-2024."}
	m := NewFromLLM(rec, "test-model", nil)

	answer, err := m.Answer(context.Background(), "When is the AI workshop?", "## AI Workshop\n**Date:** 07-Mar-2024")
	require.NoError(t, err)
	assert.Equal(t, "The AI Workshop is on 07-Mar-2024.", answer)

	user := textOf(t, rec.messages[1])
	assert.Contains(t, user, "When is the AI workshop?")
	assert.Contains(t, user, "**Date:** 07-Mar-2024")
	assert.Contains(t, textOf(t, rec.messages[0]), "ONLY using the information provided")
}

func TestGenerateWithFakeLLM(t *testing.T) {
	m := NewFromLLM(fake.NewFakeLLM([]string{"first", "second"}), "fake", nil)

	got, err := m.GenerateWithSystem(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = m.GenerateWithSystem(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
	assert.Equal(t, "fake", m.Model())
}

func TestGenerateClassifiesFatalErrors(t *testing.T) {
	m := NewFromLLM(&recordingLLM{err: errors.New("HTTP 401: invalid api key")}, "x", nil)
	_, err := m.ExtractTerms(context.Background(), "q")
	assert.ErrorIs(t, err, ErrFatalAPI)

	m = NewFromLLM(&recordingLLM{err: errors.New("connection refused")}, "x", nil)
	_, err = m.ExtractTerms(context.Background(), "q")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrFatalAPI)
}

func TestNewModelProviders(t *testing.T) {
	_, err := NewModel(context.Background(), config.Config{LLMProvider: config.ProviderNone}, nil)
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = NewModel(context.Background(), config.Config{LLMProvider: config.ProviderOpenAI}, nil)
	assert.Error(t, err)

	_, err = NewModel(context.Background(), config.Config{LLMProvider: "gemini"}, nil)
	assert.Error(t, err)

	m, err := NewModel(context.Background(), config.Config{
		LLMProvider: config.ProviderOllama,
		LLMModel:    "llama3.2",
		OllamaHost:  "http://localhost:11434",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", m.Model())
}

func TestIsFatalAPIError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("connection reset"), false},
		{"credit balance", errors.New("insufficient credit balance"), true},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"quota exceeded", errors.New("quota exceeded for model"), true},
		{"billing issue", errors.New("billing account inactive"), true},
		{"invalid api key", errors.New("invalid api key"), true},
		{"authentication failed", errors.New("authentication failed"), true},
		{"unauthorized", errors.New("unauthorized request"), true},
		{"401 status", errors.New("HTTP 401: not allowed"), true},
		{"403 status", errors.New("HTTP 403: forbidden"), true},
		{"wrapped error", fmt.Errorf("embed: %w", errors.New("credit balance too low")), true},
		{"404 not fatal", errors.New("HTTP 404: not found"), false},
		{"timeout not fatal", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, isFatalAPIError(tt.err))
		})
	}
}

func TestWrapFatalError(t *testing.T) {
	err := errors.New("invalid api key provided")
	assert.ErrorIs(t, wrapFatalError(err), ErrFatalAPI)

	plain := errors.New("network timeout")
	assert.Same(t, plain, wrapFatalError(plain))

	assert.NoError(t, wrapFatalError(nil))
}
