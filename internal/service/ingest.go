package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/search"
)

// ErrInvalidEvent is returned for input that fails validation.
var ErrInvalidEvent = errors.New("invalid event")

// Embedder embeds the lexical index of an event.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// IngestService validates events, embeds them and writes them to the store.
type IngestService struct {
	store    search.Store
	embedder Embedder
	logger   *slog.Logger
}

// NewIngestService creates an IngestService.
func NewIngestService(store search.Store, embedder Embedder, logger *slog.Logger) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{store: store, embedder: embedder, logger: logger}
}

// Prepare validates input and derives the stored form of an event without
// embedding it.
func Prepare(in models.EventInput) (models.Event, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name_of_event", in.Name},
		{"event_domain", in.Domain},
		{"date_of_event", in.Date},
		{"description_insights", in.Description},
	} {
		if !models.IsPresent(f.value) {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return models.Event{}, fmt.Errorf("%w: missing %s", ErrInvalidEvent, strings.Join(missing, ", "))
	}

	date, err := models.ParseDate(in.Date)
	if err != nil {
		return models.Event{}, fmt.Errorf("%w: date_of_event %q is not YYYY-MM-DD", ErrInvalidEvent, in.Date)
	}

	in = normalize(in)
	if in.RegistrationFee == "" {
		in.RegistrationFee = "0"
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		if slug := strings.Trim(models.Slugify(in.Name), "-"); slug != "" {
			id = slug + "-" + date.Format(models.DateLayout)
		} else {
			id = uuid.NewString()
		}
	}

	return models.Event{
		ID:                  id,
		Name:                in.Name,
		Domain:              in.Domain,
		Date:                date.Format(models.DateLayout),
		Time:                in.Time,
		Venue:               in.Venue,
		Mode:                in.Mode,
		RegistrationFee:     in.RegistrationFee,
		Speakers:            in.Speakers,
		FacultyCoordinators: in.FacultyCoordinators,
		StudentCoordinators: in.StudentCoordinators,
		Perks:               in.Perks,
		Collaboration:       in.Collaboration,
		Description:         in.Description,
		SearchText:          models.LexicalIndex(in),
		Year:                date.Year(),
		Month:               int(date.Month()),
		IsFree:              models.IsZeroFee(in.RegistrationFee),
	}, nil
}

// normalize trims every field and blanks out absent ones.
func normalize(in models.EventInput) models.EventInput {
	for _, p := range []*string{
		&in.Name, &in.Domain, &in.Date, &in.Description, &in.Time,
		&in.FacultyCoordinators, &in.StudentCoordinators, &in.Venue, &in.Mode,
		&in.RegistrationFee, &in.Speakers, &in.Perks, &in.Collaboration,
	} {
		if models.IsPresent(*p) {
			*p = strings.TrimSpace(*p)
		} else {
			*p = ""
		}
	}
	return in
}

// Add validates, embeds and stores a single event.
func (s *IngestService) Add(ctx context.Context, in models.EventInput) (models.Event, error) {
	event, err := Prepare(in)
	if err != nil {
		return models.Event{}, err
	}

	vec, err := s.embedder.Embed(ctx, event.SearchText)
	if err != nil {
		return models.Event{}, fmt.Errorf("embed event %s: %w", event.ID, err)
	}
	if len(vec) != s.store.Dimension() {
		return models.Event{}, fmt.Errorf("embed event %s: got %d dimensions, store expects %d",
			event.ID, len(vec), s.store.Dimension())
	}
	event.Embedding = vec
	event.Created = time.Now().UTC()

	if err := s.store.UpsertEvent(ctx, event); err != nil {
		return models.Event{}, fmt.Errorf("store event %s: %w", event.ID, err)
	}

	s.logger.Debug("event ingested", "id", event.ID, "date", event.Date, "free", event.IsFree)
	return event, nil
}

// ImportFailure records one event that could not be added.
type ImportFailure struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	Added    int             `json:"added"`
	Failures []ImportFailure `json:"failures,omitempty"`
}

type eventFile struct {
	Events []models.EventInput `yaml:"events"`
}

// ProgressFunc is called after each event of an import. err is nil when
// the event was added.
type ProgressFunc func(done, total int, name string, err error)

// Import reads a YAML document with an events list and adds every entry.
// Per-event failures are collected; only a malformed document or a
// cancelled context stops the import. progress may be nil.
func (s *IngestService) Import(ctx context.Context, r io.Reader, progress ProgressFunc) (ImportResult, error) {
	var doc eventFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return ImportResult{}, nil
		}
		return ImportResult{}, fmt.Errorf("decode events: %w", err)
	}

	var result ImportResult
	total := len(doc.Events)
	for i, in := range doc.Events {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, err := s.Add(ctx, in)
		if err != nil {
			s.logger.Warn("skipping event", "index", i, "name", in.Name, "error", err)
			result.Failures = append(result.Failures, ImportFailure{Index: i, Name: in.Name, Error: err.Error()})
		} else {
			result.Added++
		}
		if progress != nil {
			progress(i+1, total, in.Name, err)
		}
	}

	s.logger.Info("import finished", "added", result.Added, "failed", len(result.Failures))
	return result, nil
}

// ImportFile is Import for a file on disk.
func (s *IngestService) ImportFile(ctx context.Context, path string, progress ProgressFunc) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.Import(ctx, f, progress)
}
