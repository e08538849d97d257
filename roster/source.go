package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/kscout/paper-submission-api/models"
)

// Source fetches the acceptance roster. Implementations must not cache, every call
// reads the current roster.
type Source interface {
	// FetchRows returns every roster row in roster order
	FetchRows(ctx context.Context) ([]models.RosterRow, error)
}

// Columns names the roster header cells which hold each RosterRow field.
// Header cells are matched case insensitively, ignoring surrounding whitespace.
type Columns struct {
	// Identity is the header of the application ID column, required
	Identity string

	// Decision is the header of the decision column, required
	Decision string

	// Title is the header of the paper title column, optional
	Title string
}

// SchemaError indicates the roster does not have the shape this service expects
type SchemaError struct {
	// Why the roster could not be used
	Why string
}

// Error implements error
func (e SchemaError) Error() string {
	return fmt.Sprintf("roster schema error: %s", e.Why)
}

// normalizeHeader prepares a header cell for comparison
func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RowsFromTable converts a table, whose first line is a header, into roster rows.
// Data lines with an empty identity cell are skipped. Cells are not trimmed,
// identities are compared exactly by the eligibility checker.
func RowsFromTable(table [][]string, cols Columns) ([]models.RosterRow, error) {
	if len(table) == 0 {
		return nil, SchemaError{Why: "roster is empty, expected a header row"}
	}

	// {{{1 Locate columns
	idxIdentity, idxDecision, idxTitle := -1, -1, -1

	for i, cell := range table[0] {
		switch normalizeHeader(cell) {
		case normalizeHeader(cols.Identity):
			if idxIdentity < 0 {
				idxIdentity = i
			}
		case normalizeHeader(cols.Decision):
			if idxDecision < 0 {
				idxDecision = i
			}
		case normalizeHeader(cols.Title):
			if idxTitle < 0 && len(cols.Title) > 0 {
				idxTitle = i
			}
		}
	}

	if idxIdentity < 0 {
		return nil, SchemaError{Why: fmt.Sprintf("no \"%s\" column in header", cols.Identity)}
	}
	if idxDecision < 0 {
		return nil, SchemaError{Why: fmt.Sprintf("no \"%s\" column in header", cols.Decision)}
	}

	// {{{1 Read rows
	cell := func(line []string, i int) string {
		if i < 0 || i >= len(line) {
			return ""
		}
		return line[i]
	}

	rows := []models.RosterRow{}
	for _, line := range table[1:] {
		id := cell(line, idxIdentity)
		if len(id) == 0 {
			continue
		}

		rows = append(rows, models.RosterRow{
			ApplicationID: id,
			Decision:      cell(line, idxDecision),
			Title:         cell(line, idxTitle),
		})
	}

	return rows, nil
}
