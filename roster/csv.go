package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/kscout/paper-submission-api/models"
)

// CSVSource reads the roster from a CSV file exported from the roster spreadsheet.
// The file is re-read on every call so edits are picked up without a restart.
type CSVSource struct {
	// Path of the CSV file
	Path string

	// Columns maps header cells to roster fields
	Columns Columns
}

// FetchRows implements Source
func (s CSVSource) FetchRows(ctx context.Context) ([]models.RosterRow, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	table, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster file as CSV: %w", err)
	}

	return RowsFromTable(table, s.Columns)
}
