package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/kscout/paper-submission-api/models"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSource reads the roster from a worksheet of a Google spreadsheet
type SheetsSource struct {
	// svc is the Sheets API client
	svc *sheets.Service

	// limiter keeps reads under the Sheets API quota
	limiter *rate.Limiter

	// SpreadsheetID identifies the spreadsheet
	SpreadsheetID string

	// Worksheet is the name of the tab holding the roster
	Worksheet string

	// Columns maps header cells to roster fields
	Columns Columns
}

// SheetsSourceConfig holds configuration for SheetsSource
type SheetsSourceConfig struct {
	// CredentialsPath is a service account key file, if empty application default
	// credentials are used
	CredentialsPath string

	// SpreadsheetID identifies the spreadsheet
	SpreadsheetID string

	// Worksheet is the name of the tab holding the roster
	Worksheet string

	// Columns maps header cells to roster fields
	Columns Columns

	// RequestsPerMinute caps reads against the Sheets API
	RequestsPerMinute int
}

// NewSheetsSource creates a Google Sheets backed roster source
func NewSheetsSource(ctx context.Context, cfg SheetsSourceConfig) (*SheetsSource, error) {
	if len(cfg.SpreadsheetID) == 0 {
		return nil, fmt.Errorf("spreadsheet ID is required for sheets roster")
	}

	opts := []option.ClientOption{
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	}
	if len(cfg.CredentialsPath) > 0 {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets API client: %s", err.Error())
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &SheetsSource{
		svc:           svc,
		limiter:       rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		SpreadsheetID: cfg.SpreadsheetID,
		Worksheet:     cfg.Worksheet,
		Columns:       cfg.Columns,
	}, nil
}

// FetchRows implements Source
func (s *SheetsSource) FetchRows(ctx context.Context) ([]models.RosterRow, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for sheets API rate limit: %s", err.Error())
	}

	// A missing worksheet makes the API reject the range
	readRange := sheetRange(s.Worksheet)

	resp, err := s.svc.Spreadsheets.Values.Get(s.SpreadsheetID, readRange).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet \"%s\": %w", s.Worksheet, err)
	}

	return RowsFromTable(cellsToStrings(resp.Values), s.Columns)
}

// sheetRange is the A1 notation range covering the whole worksheet name.
// Apostrophes in a quoted sheet name are escaped by doubling them.
func sheetRange(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// cellsToStrings converts the loosely typed values returned by the Sheets API
func cellsToStrings(values [][]interface{}) [][]string {
	table := make([][]string, 0, len(values))

	for _, line := range values {
		cells := make([]string, 0, len(line))
		for _, v := range line {
			if s, ok := v.(string); ok {
				cells = append(cells, s)
			} else if v == nil {
				cells = append(cells, "")
			} else {
				cells = append(cells, fmt.Sprintf("%v", v))
			}
		}
		table = append(table, cells)
	}

	return table
}
