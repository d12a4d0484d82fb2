package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/search"
	"github.com/surrealdb/surrealdb.go"
)

var _ search.Catalog = (*Client)(nil)

// eventColumns excludes embedding and search_text. Search selects search_text
// on its own.
const eventColumns = `record::id(id) AS id, name, domain, date, time, venue, mode,
	registration_fee, speakers, faculty_coordinators, student_coordinators,
	perks, collaboration, description, year, month, is_free, created`

// eventRow is an event as returned by search, with its semantic score.
type eventRow struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Domain              string    `json:"domain"`
	Date                string    `json:"date"`
	Time                string    `json:"time"`
	Venue               string    `json:"venue"`
	Mode                string    `json:"mode"`
	RegistrationFee     string    `json:"registration_fee"`
	Speakers            string    `json:"speakers"`
	FacultyCoordinators string    `json:"faculty_coordinators"`
	StudentCoordinators string    `json:"student_coordinators"`
	Perks               string    `json:"perks"`
	Collaboration       string    `json:"collaboration"`
	Description         string    `json:"description"`
	Year                int       `json:"year"`
	Month               int       `json:"month"`
	IsFree              bool      `json:"is_free"`
	Created             time.Time `json:"created"`
	SearchText          string    `json:"search_text"`

	SemanticScore float64 `json:"semantic_score"`
}

func (r eventRow) event() models.Event {
	return models.Event{
		ID:                  r.ID,
		Name:                r.Name,
		Domain:              r.Domain,
		Date:                r.Date,
		Time:                r.Time,
		Venue:               r.Venue,
		Mode:                r.Mode,
		RegistrationFee:     r.RegistrationFee,
		Speakers:            r.Speakers,
		FacultyCoordinators: r.FacultyCoordinators,
		StudentCoordinators: r.StudentCoordinators,
		Perks:               r.Perks,
		Collaboration:       r.Collaboration,
		Description:         r.Description,
		Year:                r.Year,
		Month:               r.Month,
		IsFree:              r.IsFree,
		Created:             r.Created,
	}
}

// filterClause renders the plan's predicates as a WHERE clause over bound
// parameters. Values never enter the SQL text.
func filterClause(f models.QueryFilter, vars map[string]any) string {
	var preds []string
	if f.Year != nil {
		preds = append(preds, "year = $year")
		vars["year"] = *f.Year
	}
	if f.Month != nil {
		preds = append(preds, "month = $month")
		vars["month"] = *f.Month
	}
	if f.FreeOnly {
		preds = append(preds, "is_free = true")
	}
	if len(preds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(preds, " AND ")
}

// searchSQL returns every filtered event with its cosine similarity to the
// query and the text the lexical score is computed from. Rows come back in
// creation order so ranking ties stay stable.
func searchSQL(where string) string {
	return fmt.Sprintf(`
		SELECT %s, search_text,
			vector::similarity::cosine(embedding, $emb) AS semantic_score
		FROM event %s
		ORDER BY created ASC
	`, eventColumns, where)
}

// Search runs the filter and semantic half of a plan as a single SurrealQL
// query, then adds the word similarity score, which SurrealQL has no
// function for, before applying the threshold and limit.
func (c *Client) Search(ctx context.Context, plan search.Plan) ([]models.ScoredCandidate, error) {
	if len(plan.Vector) != c.cfg.Dimension {
		return nil, fmt.Errorf("search events: %w: got %d, want %d",
			ErrDimensionMismatch, len(plan.Vector), c.cfg.Dimension)
	}

	vars := map[string]any{"emb": plan.Vector}
	sql := searchSQL(filterClause(plan.Filter, vars))

	results, err := surrealdb.Query[[]eventRow](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.ScoredCandidate{}, nil
	}

	return scoreRows((*results)[0].Result, plan), nil
}

// scoreRows adds word similarity to each row, then thresholds and ranks.
func scoreRows(rows []eventRow, plan search.Plan) []models.ScoredCandidate {
	var terms map[string]struct{}
	if plan.Terms != "" {
		terms = search.Trigrams(plan.Terms)
	}

	out := make([]models.ScoredCandidate, 0, len(rows))
	for _, r := range rows {
		cand := search.Score(models.ScoredCandidate{
			Event:         r.event(),
			SemanticScore: r.SemanticScore,
			LexicalScore:  search.BestExtent(terms, search.WordTrigrams(r.SearchText)),
		}, plan.Weights)
		if cand.FinalScore < plan.MinScore {
			continue
		}
		out = append(out, cand)
	}
	return search.Rank(out, plan.Limit)
}

// UpsertEvent creates or replaces an event by ID. The creation time of an
// existing event is kept so re-imports do not reorder ties.
func (c *Client) UpsertEvent(ctx context.Context, e models.Event) error {
	if len(e.Embedding) != c.cfg.Dimension {
		return fmt.Errorf("upsert event %s: %w: got %d, want %d",
			e.ID, ErrDimensionMismatch, len(e.Embedding), c.cfg.Dimension)
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("event", $id) SET
			name = $name,
			domain = $domain,
			date = $date,
			time = $time,
			venue = $venue,
			mode = $mode,
			registration_fee = $registration_fee,
			speakers = $speakers,
			faculty_coordinators = $faculty_coordinators,
			student_coordinators = $student_coordinators,
			perks = $perks,
			collaboration = $collaboration,
			description = $description,
			search_text = $search_text,
			embedding = $embedding,
			year = $year,
			month = $month,
			is_free = $is_free,
			created = IF created THEN created ELSE time::now() END
		RETURN NONE
	`, map[string]any{
		"id":                   e.ID,
		"name":                 e.Name,
		"domain":               e.Domain,
		"date":                 e.Date,
		"time":                 e.Time,
		"venue":                e.Venue,
		"mode":                 e.Mode,
		"registration_fee":     e.RegistrationFee,
		"speakers":             e.Speakers,
		"faculty_coordinators": e.FacultyCoordinators,
		"student_coordinators": e.StudentCoordinators,
		"perks":                e.Perks,
		"collaboration":        e.Collaboration,
		"description":          e.Description,
		"search_text":          e.SearchText,
		"embedding":            e.Embedding,
		"year":                 e.Year,
		"month":                e.Month,
		"is_free":              e.IsFree,
	})
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", e.ID, wrapQueryError(err))
	}
	return nil
}

// GetEvent returns one event by ID, or ErrNotFound.
func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	results, err := surrealdb.Query[[]eventRow](ctx, c.db,
		fmt.Sprintf(`SELECT %s FROM type::record("event", $id)`, eventColumns),
		map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get event: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get event %s: %w", id, ErrNotFound)
	}
	e := (*results)[0].Result[0].event()
	return &e, nil
}

// CountEvents returns the number of stored events.
func (c *Client) CountEvents(ctx context.Context) (int, error) {
	results, err := surrealdb.Query[[]struct {
		Count int `json:"count"`
	}](ctx, c.db, `SELECT count() AS count FROM event GROUP ALL`, nil)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}
