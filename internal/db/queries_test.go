package db

import (
	"math"
	"testing"

	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterClause(t *testing.T) {
	year, month := 2024, 3

	tests := []struct {
		name     string
		filter   models.QueryFilter
		want     string
		wantVars map[string]any
	}{
		{"open", models.QueryFilter{}, "", map[string]any{}},
		{"year", models.QueryFilter{Year: &year}, "WHERE year = $year", map[string]any{"year": 2024}},
		{
			"all",
			models.QueryFilter{Year: &year, Month: &month, FreeOnly: true},
			"WHERE year = $year AND month = $month AND is_free = true",
			map[string]any{"year": 2024, "month": 3},
		},
		{"free only", models.QueryFilter{FreeOnly: true}, "WHERE is_free = true", map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]any{}
			assert.Equal(t, tt.want, filterClause(tt.filter, vars))
			assert.Equal(t, tt.wantVars, vars)
		})
	}
}

func TestSearchSQL(t *testing.T) {
	sql := searchSQL("WHERE year = $year")

	assert.Contains(t, sql, "FROM event WHERE year = $year")
	assert.Contains(t, sql, "vector::similarity::cosine(embedding, $emb)")
	assert.Contains(t, sql, "search_text")
	assert.Contains(t, sql, "ORDER BY created ASC")
	assert.NotContains(t, sql, "2024")
	assert.NotContains(t, sql, "jaro")
}

func TestScoreRowsRanksKeywordMatchFirst(t *testing.T) {
	rows := []eventRow{
		{
			ID:            "ml-bootcamp",
			SearchText:    "machine learning bootcamp technical 2024-03-14 seminar hall deep dive into neural networks and model training.",
			SemanticScore: 0.9,
		},
		{
			ID:            "ai-workshop",
			SearchText:    "ai workshop technical 2024-03-07 10:00 am lab 3 offline dr. rao hands-on introduction to neural networks.",
			SemanticScore: 0.8,
		},
		{
			ID:            "dance-night",
			SearchText:    "dance night cultural 2024-03-20 main lawn dj nova live music and dance performances by campus bands.",
			SemanticScore: 0,
		},
	}
	plan, err := search.NewBuilder().Semantic([]float32{1, 0, 0}).Lexical("AI workshop").Build()
	require.NoError(t, err)

	got := scoreRows(rows, plan)

	require.Len(t, got, 2)
	assert.Equal(t, "ai-workshop", got[0].Event.ID)
	assert.InDelta(t, 0.87, got[0].FinalScore, 1e-9)
	assert.Equal(t, "ml-bootcamp", got[1].Event.ID)
	for i, c := range got {
		want := search.WordSimilarity("ai workshop", rows[1-i].SearchText)
		assert.InDelta(t, want, c.LexicalScore, 1e-9)
	}
}

func TestScoreRowsThresholdAndNaN(t *testing.T) {
	rows := []eventRow{
		{ID: "a", SearchText: "hackathon", SemanticScore: math.NaN()},
		{ID: "b", SearchText: "hackathon", SemanticScore: 1},
		{ID: "c", SearchText: "hackathon", SemanticScore: 1},
	}
	plan, err := search.NewBuilder().Semantic([]float32{1}).Limit(1).Build()
	require.NoError(t, err)

	got := scoreRows(rows, plan)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Event.ID)

	got = scoreRows(rows[:1], plan)
	assert.Empty(t, got)
}

func TestSchemaSQLDimension(t *testing.T) {
	assert.Contains(t, schemaSQL(768), "HNSW DIMENSION 768 DIST COSINE")
}

func TestEventRowConversion(t *testing.T) {
	r := eventRow{ID: "ai-workshop-2024-03-07", Name: "AI Workshop", Year: 2024, Month: 3, IsFree: true, SemanticScore: 0.9}
	e := r.event()
	assert.Equal(t, "ai-workshop-2024-03-07", e.ID)
	assert.Equal(t, 2024, e.Year)
	assert.True(t, e.IsFree)
	assert.Empty(t, e.Embedding)
}
