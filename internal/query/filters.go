// Package query turns a raw question into structured filters and a
// keyword phrase for fuzzy matching.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/raphaelgruber/eventqa/internal/models"
)

var (
	yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	wordPattern = regexp.MustCompile(`[a-z]+`)

	// Whole-phrase fee signals. "free" must stand alone so "freedom" does not count.
	freePattern = regexp.MustCompile(`\bfree\b|\bno (?:registration )?(?:cost|fee|fees|charge)\b|\bwithout (?:any )?(?:fee|fees|cost)\b|\bzero (?:fee|cost)\b`)
)

var monthNames = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may":  5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// Words after "may" that make it the modal verb rather than the month.
var modalFollowers = map[string]bool{"i": true, "we": true, "you": true, "be": true}

// ExtractFilters parses temporal and cost constraints out of a question.
// When several years or months appear, the first one in the text wins.
func ExtractFilters(raw string) models.QueryFilter {
	q := strings.ToLower(raw)
	var f models.QueryFilter

	if m := yearPattern.FindString(q); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			f.Year = &y
		}
	}

	words := wordPattern.FindAllString(q, -1)
	for i, w := range words {
		month, ok := monthNames[w]
		if !ok {
			continue
		}
		if w == "may" && i+1 < len(words) && modalFollowers[words[i+1]] {
			continue
		}
		f.Month = &month
		break
	}

	if freePattern.MatchString(q) {
		f.FreeOnly = true
	}
	return f
}
