package search

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/eventqa/internal/models"
)

// Builder assembles a Plan from typed predicates and scoring clauses.
// Errors are deferred to Build so calls can be chained.
type Builder struct {
	plan Plan
	err  error
}

// NewBuilder starts a plan with default weights, threshold and limit.
func NewBuilder() *Builder {
	return &Builder{plan: Plan{
		Weights:  DefaultWeights,
		MinScore: DefaultMinScore,
		Limit:    DefaultLimit,
	}}
}

// Filter applies every constraint set in f.
func (b *Builder) Filter(f models.QueryFilter) *Builder {
	if f.Year != nil {
		b.YearIs(*f.Year)
	}
	if f.Month != nil {
		b.MonthIs(*f.Month)
	}
	if f.FreeOnly {
		b.FreeOnly()
	}
	return b
}

// YearIs restricts candidates to events held in year.
func (b *Builder) YearIs(year int) *Builder {
	if year < 1900 || year > 2099 {
		b.fail(fmt.Errorf("year out of range: %d", year))
		return b
	}
	b.plan.Filter.Year = &year
	return b
}

// MonthIs restricts candidates to events held in month (1-12).
func (b *Builder) MonthIs(month int) *Builder {
	if month < 1 || month > 12 {
		b.fail(fmt.Errorf("month out of range: %d", month))
		return b
	}
	b.plan.Filter.Month = &month
	return b
}

// FreeOnly restricts candidates to events without a registration fee.
func (b *Builder) FreeOnly() *Builder {
	b.plan.Filter.FreeOnly = true
	return b
}

// Semantic sets the query embedding.
func (b *Builder) Semantic(vector []float32) *Builder {
	b.plan.Vector = vector
	return b
}

// Lexical sets the keyword phrase matched against each event's search text.
func (b *Builder) Lexical(terms string) *Builder {
	b.plan.Terms = strings.ToLower(strings.TrimSpace(terms))
	return b
}

// Weighted overrides the score weights.
func (b *Builder) Weighted(w Weights) *Builder {
	if err := w.Validate(); err != nil {
		b.fail(err)
		return b
	}
	b.plan.Weights = w
	return b
}

// MinScore sets the final-score threshold below which candidates are dropped.
func (b *Builder) MinScore(s float64) *Builder {
	if s < 0 || s > 1 {
		b.fail(fmt.Errorf("min score out of range: %v", s))
		return b
	}
	b.plan.MinScore = s
	return b
}

// Limit sets how many candidates to return, capped at MaxLimit.
// Non-positive values keep the default.
func (b *Builder) Limit(n int) *Builder {
	switch {
	case n <= 0:
		b.plan.Limit = DefaultLimit
	case n > MaxLimit:
		b.plan.Limit = MaxLimit
	default:
		b.plan.Limit = n
	}
	return b
}

// Build returns the plan or the first error recorded while building it.
func (b *Builder) Build() (Plan, error) {
	if b.err != nil {
		return Plan{}, b.err
	}
	if len(b.plan.Vector) == 0 {
		return Plan{}, ErrEmptyVector
	}
	return b.plan, nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
