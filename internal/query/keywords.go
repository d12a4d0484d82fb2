package query

import (
	"context"
	"regexp"
	"strings"
)

var nonKeywordChars = regexp.MustCompile(`[^a-z0-9\s]`)

var stopWords = map[string]bool{
	"give": true, "details": true, "about": true, "events": true, "event": true,
	"conducted": true, "by": true, "show": true, "list": true, "me": true,
	"tell": true, "what": true, "where": true, "when": true, "who": true,
	"is": true, "are": true, "was": true, "were": true, "the": true, "an": true,
	"a": true, "of": true, "in": true, "on": true, "at": true, "for": true,
	"to": true, "from": true, "with": true, "all": true, "every": true,
	"some": true, "any": true, "there": true, "which": true, "that": true,
	"and": true, "or": true, "please": true, "can": true, "you": true,
	"i": true, "do": true, "did": true, "have": true, "has": true, "held": true,
}

// KeywordExtractor reduces a question to its content words without any
// external call. It is the extractor used when no language model is configured.
type KeywordExtractor struct{}

// ExtractTerms implements TermExtractor.
func (KeywordExtractor) ExtractTerms(_ context.Context, raw string) (string, error) {
	return Keywords(raw), nil
}

// Keywords strips punctuation and stop words from text.
func Keywords(text string) string {
	text = nonKeywordChars.ReplaceAllString(strings.ToLower(text), " ")
	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !stopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
