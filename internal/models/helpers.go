// Package models defines data structures for the event catalog.
package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NaNSentinel is the marker ingestion historically stored for blank fields.
const NaNSentinel = "NaN"

// DateLayout is the ISO calendar form events are stored in.
const DateLayout = "2006-01-02"

// IsPresent reports whether a field value carries information.
// Empty, whitespace-only and NaN values are absent.
func IsPresent(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return !strings.EqualFold(s, NaNSentinel)
}

// IsZeroFee reports whether a registration fee denotes a free event.
// Absent fees count as free, matching how ingestion defaults them to "0".
func IsZeroFee(fee string) bool {
	if !IsPresent(fee) {
		return true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fee), 64)
	if err != nil || math.IsNaN(v) {
		return false
	}
	return v == 0
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// LexicalIndex builds the lowercased concatenation of all text fields
// that fuzzy matching runs against.
func LexicalIndex(in EventInput) string {
	fields := []string{
		in.Name,
		in.Domain,
		in.Date,
		in.Time,
		in.Venue,
		in.Mode,
		in.Speakers,
		in.FacultyCoordinators,
		in.StudentCoordinators,
		in.Perks,
		in.Collaboration,
		in.Description,
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsPresent(f) {
			parts = append(parts, strings.ToLower(strings.Join(strings.Fields(f), " ")))
		}
	}
	return strings.Join(parts, " ")
}

// Slugify converts a name to a lowercase hyphenated identifier.
// Characters other than ASCII letters, digits and hyphens are dropped.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
