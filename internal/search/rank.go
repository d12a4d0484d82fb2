package search

import (
	"sort"

	"github.com/raphaelgruber/eventqa/internal/models"
)

// Rank orders candidates by final score, best first, and truncates to limit.
// Candidates with equal scores keep their incoming order.
func Rank(candidates []models.ScoredCandidate, limit int) []models.ScoredCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// Score fills in a candidate's final score from its component scores.
// Components are clamped to [0,1] first.
func Score(c models.ScoredCandidate, w Weights) models.ScoredCandidate {
	c.SemanticScore = ClampUnit(c.SemanticScore)
	c.LexicalScore = ClampUnit(c.LexicalScore)
	c.FinalScore = w.Combine(c.SemanticScore, c.LexicalScore)
	return c
}
