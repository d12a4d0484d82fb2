// Package contextbuilder renders ranked events into the text context handed
// to answer generation.
package contextbuilder

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/eventqa/internal/models"
)

// Delimiter separates event blocks.
const Delimiter = "\n\n---\n\n"

// DisplayDateLayout is the human-readable date form, e.g. 07-Mar-2024.
const DisplayDateLayout = "02-Jan-2006"

// FreeLabel replaces a zero registration fee.
const FreeLabel = "Free"

// Context is an ordered list of event blocks, best match first.
// The zero value is the empty context.
type Context struct {
	blocks []string
}

// Empty returns the context that stands for "no matching events".
func Empty() Context {
	return Context{}
}

// IsEmpty reports whether no event made it into the context.
func (c Context) IsEmpty() bool {
	return len(c.blocks) == 0
}

// Len returns the number of event blocks.
func (c Context) Len() int {
	return len(c.blocks)
}

// Blocks returns a copy of the rendered event blocks.
func (c Context) Blocks() []string {
	return append([]string(nil), c.blocks...)
}

// String joins the blocks with Delimiter.
func (c Context) String() string {
	return strings.Join(c.blocks, Delimiter)
}

// Assemble renders candidates in the order given. Fields that are absent,
// blank or NaN produce no line.
func Assemble(candidates []models.ScoredCandidate) Context {
	if len(candidates) == 0 {
		return Empty()
	}
	blocks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if b := renderBlock(c); b != "" {
			blocks = append(blocks, b)
		}
	}
	return Context{blocks: blocks}
}

type field struct {
	label string
	value string
	ok    bool
}

func present(label, value string) field {
	return field{label: label, value: strings.TrimSpace(value), ok: models.IsPresent(value)}
}

func renderBlock(c models.ScoredCandidate) string {
	e := c.Event

	date, dateOK := FormatDate(e.Date)
	fee, feeOK := FormatFee(e.RegistrationFee)

	fields := []field{
		present("Domain", e.Domain),
		{label: "Date", value: date, ok: dateOK},
		present("Time", e.Time),
		present("Venue", e.Venue),
		present("Mode", e.Mode),
		{label: "Registration Fee", value: fee, ok: feeOK},
		present("Speakers", e.Speakers),
		present("Faculty Coordinators", e.FacultyCoordinators),
		present("Student Coordinators", e.StudentCoordinators),
		present("Perks", e.Perks),
		present("Collaboration", e.Collaboration),
		present("Description", e.Description),
	}

	var lines []string
	if models.IsPresent(e.Name) {
		lines = append(lines, "## "+strings.TrimSpace(e.Name))
	}
	for _, f := range fields {
		if f.ok {
			lines = append(lines, fmt.Sprintf("**%s:** %s", f.label, f.value))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	lines = append(lines, fmt.Sprintf("**Relevance Score:** %.2f", c.FinalScore))
	return strings.Join(lines, "\n")
}

// FormatDate converts an ISO date to DisplayDateLayout.
// It reports false for absent or unparseable dates.
func FormatDate(iso string) (string, bool) {
	if !models.IsPresent(iso) {
		return "", false
	}
	t, err := models.ParseDate(iso)
	if err != nil {
		return "", false
	}
	return t.Format(DisplayDateLayout), true
}

// FormatFee renders a zero fee as FreeLabel and anything else verbatim.
// It reports false for absent fees.
func FormatFee(fee string) (string, bool) {
	if !models.IsPresent(fee) {
		return "", false
	}
	if models.IsZeroFee(fee) {
		return FreeLabel, true
	}
	return strings.TrimSpace(fee), true
}
