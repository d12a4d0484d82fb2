package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFilters(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		year     int
		month    int
		freeOnly bool
	}{
		{"open query", "what workshops happened recently", 0, 0, false},
		{"year only", "Events in 2023", 2023, 0, false},
		{"month name", "anything in October?", 0, 10, false},
		{"month abbreviation", "hackathons in Sept", 0, 9, false},
		{"free token", "any free coding events", 0, 0, true},
		{"no cost phrase", "events with no cost", 0, 0, true},
		{"no registration fee", "show events with no registration fee", 0, 0, true},
		{"freedom is not free", "freedom of speech debate", 0, 0, false},
		{"month year and free combined", "events in March 2024 that are free", 2024, 3, true},
		{"first year wins", "compare 2022 and 2023 fests", 2022, 0, false},
		{"first month wins", "between june and august", 0, 6, false},
		{"modal may skipped", "May I know about the robotics club?", 0, 0, false},
		{"may as month", "events in may 2025", 2025, 5, false},
		{"year must be standalone", "room 120245", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ExtractFilters(tt.query)

			if tt.year == 0 {
				assert.Nil(t, f.Year)
			} else {
				require.NotNil(t, f.Year)
				assert.Equal(t, tt.year, *f.Year)
			}
			if tt.month == 0 {
				assert.Nil(t, f.Month)
			} else {
				require.NotNil(t, f.Month)
				assert.Equal(t, tt.month, *f.Month)
			}
			assert.Equal(t, tt.freeOnly, f.FreeOnly)
		})
	}
}
