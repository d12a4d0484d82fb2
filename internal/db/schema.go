package db

import "fmt"

// schemaSQL defines the event table. Year, month and is_free are derived at
// ingest so filters stay plain equality checks.
func schemaSQL(dimension int) string {
	return fmt.Sprintf(`
    DEFINE TABLE IF NOT EXISTS event SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON event TYPE string;
    DEFINE FIELD IF NOT EXISTS domain ON event TYPE string;
    DEFINE FIELD IF NOT EXISTS date ON event TYPE string;
    DEFINE FIELD IF NOT EXISTS time ON event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS venue ON event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS mode ON event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS registration_fee ON event TYPE string DEFAULT "0";
    DEFINE FIELD IF NOT EXISTS speakers ON event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS faculty_coordinators ON event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS student_coordinators ON event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS perks ON event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS collaboration ON event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS description ON event TYPE string;
    DEFINE FIELD IF NOT EXISTS search_text ON event TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON event TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS year ON event TYPE int;
    DEFINE FIELD IF NOT EXISTS month ON event TYPE int;
    DEFINE FIELD IF NOT EXISTS is_free ON event TYPE bool;
    DEFINE FIELD IF NOT EXISTS created ON event TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS event_year_month ON event FIELDS year, month;
    DEFINE INDEX IF NOT EXISTS event_is_free ON event FIELDS is_free;
    DEFINE INDEX IF NOT EXISTS event_embedding ON event FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
`, dimension)
}
