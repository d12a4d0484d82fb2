package models

import "time"

// Event is one catalog record: a club or university activity.
// Embedding and SearchText are owned by ingestion and read-only at query time.
type Event struct {
	ID                  string    `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	Domain              string    `json:"domain" db:"domain"`
	Date                string    `json:"date" db:"date"` // ISO YYYY-MM-DD
	Time                string    `json:"time" db:"time"`
	Venue               string    `json:"venue" db:"venue"`
	Mode                string    `json:"mode" db:"mode"`
	RegistrationFee     string    `json:"registration_fee" db:"registration_fee"`
	Speakers            string    `json:"speakers" db:"speakers"`
	FacultyCoordinators string    `json:"faculty_coordinators" db:"faculty_coordinators"`
	StudentCoordinators string    `json:"student_coordinators" db:"student_coordinators"`
	Perks               string    `json:"perks" db:"perks"`
	Collaboration       string    `json:"collaboration" db:"collaboration"`
	Description         string    `json:"description" db:"description"`
	Embedding           []float32 `json:"embedding,omitempty" db:"-"`
	SearchText          string    `json:"search_text,omitempty" db:"-"`

	// Derived at ingest so stores can filter without parsing dates.
	Year   int  `json:"year" db:"year"`
	Month  int  `json:"month" db:"month"`
	IsFree bool `json:"is_free" db:"is_free"`

	Created time.Time `json:"created,omitempty" db:"created"`
}

// EventInput is the ingestion payload for a single event.
// Optional fields may be empty or hold the "NaN" sentinel.
type EventInput struct {
	ID                  string `json:"id,omitempty" yaml:"id,omitempty"`
	Name                string `json:"name_of_event" yaml:"name_of_event"`
	Domain              string `json:"event_domain" yaml:"event_domain"`
	Date                string `json:"date_of_event" yaml:"date_of_event"`
	Description         string `json:"description_insights" yaml:"description_insights"`
	Time                string `json:"time_of_event,omitempty" yaml:"time_of_event,omitempty"`
	FacultyCoordinators string `json:"faculty_coordinators,omitempty" yaml:"faculty_coordinators,omitempty"`
	StudentCoordinators string `json:"student_coordinators,omitempty" yaml:"student_coordinators,omitempty"`
	Venue               string `json:"venue,omitempty" yaml:"venue,omitempty"`
	Mode                string `json:"mode_of_event,omitempty" yaml:"mode_of_event,omitempty"`
	RegistrationFee     string `json:"registration_fee,omitempty" yaml:"registration_fee,omitempty"`
	Speakers            string `json:"speakers,omitempty" yaml:"speakers,omitempty"`
	Perks               string `json:"perks,omitempty" yaml:"perks,omitempty"`
	Collaboration       string `json:"collaboration,omitempty" yaml:"collaboration,omitempty"`
}

// ScoredCandidate is one ranked retrieval result.
// FinalScore is the weighted sum of the two component scores, all in [0,1].
type ScoredCandidate struct {
	Event         Event   `json:"event"`
	SemanticScore float64 `json:"semantic_score"`
	LexicalScore  float64 `json:"lexical_score"`
	FinalScore    float64 `json:"final_score"`
}
