package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRefinerFallbacks(t *testing.T) {
	const raw = "Give me details about the AI workshop in March"

	tests := []struct {
		name      string
		extractor TermExtractor
		want      string
	}{
		{"nil extractor", nil, raw},
		{
			"clean output",
			TermExtractorFunc(func(context.Context, string) (string, error) { return "AI workshop", nil }),
			"AI workshop",
		},
		{
			"decorated output trimmed",
			TermExtractorFunc(func(context.Context, string) (string, error) { return "  \"AI workshop.\" ", nil }),
			"AI workshop",
		},
		{
			"error falls back",
			TermExtractorFunc(func(context.Context, string) (string, error) { return "", errors.New("connection refused") }),
			raw,
		},
		{
			"empty output falls back",
			TermExtractorFunc(func(context.Context, string) (string, error) { return "   ", nil }),
			raw,
		},
		{
			"chatty multi-line output falls back",
			TermExtractorFunc(func(context.Context, string) (string, error) {
				return "Sure! Here are the keywords:\nAI workshop", nil
			}),
			raw,
		},
		{
			"overlong output falls back",
			TermExtractorFunc(func(context.Context, string) (string, error) {
				return "one two three four five six seven eight nine ten eleven twelve thirteen", nil
			}),
			raw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRefiner(tt.extractor, time.Second, quietLogger())
			assert.Equal(t, tt.want, r.Refine(context.Background(), raw))
		})
	}
}

func TestRefinerTimeout(t *testing.T) {
	slow := TermExtractorFunc(func(ctx context.Context, _ string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "too late", nil
		}
	})

	r := NewRefiner(slow, 20*time.Millisecond, quietLogger())

	start := time.Now()
	got := r.Refine(context.Background(), "robotics expo")
	assert.Equal(t, "robotics expo", got)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Give me details about the AI Workshop!", "ai workshop"},
		{"Who were the speakers at HackFest 2024?", "speakers hackfest 2024"},
		{"what is the", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Keywords(tt.in), tt.in)
	}

	got, err := KeywordExtractor{}.ExtractTerms(context.Background(), "List events about robotics")
	assert.NoError(t, err)
	assert.Equal(t, "robotics", got)
}
