package pgstore

import "fmt"

const eventColumns = `id, name, domain, date, time, venue, mode, registration_fee, speakers,
	faculty_coordinators, student_coordinators, perks, collaboration, description,
	year, month, is_free, created`

func schemaSQL(dimension int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;
CREATE EXTENSION IF NOT EXISTS pg_trgm;

CREATE TABLE IF NOT EXISTS events (
	seq                  BIGSERIAL,
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	domain               TEXT NOT NULL,
	date                 TEXT NOT NULL,
	time                 TEXT NOT NULL DEFAULT '',
	venue                TEXT NOT NULL DEFAULT '',
	mode                 TEXT NOT NULL DEFAULT '',
	registration_fee     TEXT NOT NULL DEFAULT '0',
	speakers             TEXT NOT NULL DEFAULT '',
	faculty_coordinators TEXT NOT NULL DEFAULT '',
	student_coordinators TEXT NOT NULL DEFAULT '',
	perks                TEXT NOT NULL DEFAULT '',
	collaboration        TEXT NOT NULL DEFAULT '',
	description          TEXT NOT NULL,
	search_text          TEXT NOT NULL,
	embedding            vector(%d) NOT NULL,
	year                 INT NOT NULL,
	month                INT NOT NULL,
	is_free              BOOLEAN NOT NULL,
	created              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS events_search_text_trgm ON events USING GIN (search_text gin_trgm_ops);
CREATE INDEX IF NOT EXISTS events_year_month ON events (year, month);
`, dimension)
}

// searchSQL takes, in order: query vector, terms, semantic weight, lexical
// weight, year (nullable), month (nullable), free only, min score, limit.
// A zero vector makes <=> return NaN, which Postgres sorts above every
// number, so it is mapped to 0 before clamping.
const searchSQL = `
SELECT ` + eventColumns + `, semantic_score, lexical_score
FROM (
	SELECT ` + eventColumns + `, seq,
		GREATEST(0, COALESCE(NULLIF(1 - (embedding <=> $1::vector), 'NaN'::float8), 0))::float8 AS semantic_score,
		CASE WHEN $2::text = '' THEN 0 ELSE strict_word_similarity($2::text, search_text) END::float8 AS lexical_score
	FROM events
	WHERE ($5::int IS NULL OR year = $5::int)
	  AND ($6::int IS NULL OR month = $6::int)
	  AND (NOT $7::bool OR is_free)
) scored
WHERE $3::float8 * semantic_score + $4::float8 * lexical_score >= $8::float8
ORDER BY $3::float8 * semantic_score + $4::float8 * lexical_score DESC, seq ASC
LIMIT $9`

const upsertSQL = `
INSERT INTO events (
	id, name, domain, date, time, venue, mode, registration_fee, speakers,
	faculty_coordinators, student_coordinators, perks, collaboration, description,
	search_text, embedding, year, month, is_free
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16::vector, $17, $18, $19
)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	domain = EXCLUDED.domain,
	date = EXCLUDED.date,
	time = EXCLUDED.time,
	venue = EXCLUDED.venue,
	mode = EXCLUDED.mode,
	registration_fee = EXCLUDED.registration_fee,
	speakers = EXCLUDED.speakers,
	faculty_coordinators = EXCLUDED.faculty_coordinators,
	student_coordinators = EXCLUDED.student_coordinators,
	perks = EXCLUDED.perks,
	collaboration = EXCLUDED.collaboration,
	description = EXCLUDED.description,
	search_text = EXCLUDED.search_text,
	embedding = EXCLUDED.embedding,
	year = EXCLUDED.year,
	month = EXCLUDED.month,
	is_free = EXCLUDED.is_free`
