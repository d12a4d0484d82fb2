package query

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// DefaultTermsTimeout bounds a single term-extraction call.
const DefaultTermsTimeout = 8 * time.Second

// maxTermWords caps how long a usable keyword phrase may be.
const maxTermWords = 12

// TermExtractor reduces a question to a short keyword phrase.
type TermExtractor interface {
	ExtractTerms(ctx context.Context, raw string) (string, error)
}

// TermExtractorFunc adapts a plain function to TermExtractor.
type TermExtractorFunc func(ctx context.Context, raw string) (string, error)

// ExtractTerms implements TermExtractor.
func (f TermExtractorFunc) ExtractTerms(ctx context.Context, raw string) (string, error) {
	return f(ctx, raw)
}

// Refiner runs a TermExtractor under a deadline and falls back to the raw
// question whenever the extractor fails or returns something unusable.
type Refiner struct {
	extractor TermExtractor
	timeout   time.Duration
	logger    *slog.Logger
}

// NewRefiner creates a Refiner. A nil extractor always yields the raw query.
func NewRefiner(extractor TermExtractor, timeout time.Duration, logger *slog.Logger) *Refiner {
	if timeout <= 0 {
		timeout = DefaultTermsTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{extractor: extractor, timeout: timeout, logger: logger}
}

// Refine returns the keyword phrase for raw. It never fails.
func (r *Refiner) Refine(ctx context.Context, raw string) string {
	if r == nil || r.extractor == nil {
		return raw
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	terms, err := r.extractor.ExtractTerms(ctx, raw)
	if err != nil {
		r.logger.Warn("term extraction failed, using raw query",
			"error", err, "duration_ms", time.Since(start).Milliseconds())
		return raw
	}

	cleaned, ok := cleanTerms(terms, raw)
	if !ok {
		r.logger.Debug("term extraction unusable, using raw query", "output", truncate(terms, 80))
		return raw
	}
	r.logger.Debug("terms extracted", "terms", cleaned, "duration_ms", time.Since(start).Milliseconds())
	return cleaned
}

// cleanTerms trims model decoration off a keyword phrase and reports
// whether what remains is usable. A phrase longer than twice the question
// is chatter, not keywords.
func cleanTerms(s, raw string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "\n") {
		return "", false
	}
	s = strings.Trim(s, "\"'`*")
	s = strings.TrimRight(s, ".!?;:")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(strings.Fields(s)) > maxTermWords || len(s) > 2*len(raw) {
		return "", false
	}
	return s, true
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
