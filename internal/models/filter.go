package models

import (
	"fmt"
	"strings"
)

// QueryFilter holds hard constraints extracted from a question.
// Nil fields impose no constraint; set fields are AND-combined.
type QueryFilter struct {
	Year     *int `json:"year,omitempty"`
	Month    *int `json:"month,omitempty"`
	FreeOnly bool `json:"free_only,omitempty"`
}

// IsOpen reports whether the filter imposes no constraint at all.
func (f QueryFilter) IsOpen() bool {
	return f.Year == nil && f.Month == nil && !f.FreeOnly
}

// Matches reports whether an event satisfies every set constraint.
func (f QueryFilter) Matches(e Event) bool {
	if f.Year != nil && e.Year != *f.Year {
		return false
	}
	if f.Month != nil && e.Month != *f.Month {
		return false
	}
	if f.FreeOnly && !e.IsFree {
		return false
	}
	return true
}

func (f QueryFilter) String() string {
	if f.IsOpen() {
		return "none"
	}
	var parts []string
	if f.Year != nil {
		parts = append(parts, fmt.Sprintf("year=%d", *f.Year))
	}
	if f.Month != nil {
		parts = append(parts, fmt.Sprintf("month=%d", *f.Month))
	}
	if f.FreeOnly {
		parts = append(parts, "free_only")
	}
	return strings.Join(parts, ",")
}
