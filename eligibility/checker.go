package eligibility

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kscout/paper-submission-api/models"
	"github.com/kscout/paper-submission-api/roster"
)

// UndecidedLabel is displayed in place of an empty decision
const UndecidedLabel = "Not Decided"

// acceptedDecisions holds the normalized decision labels which allow a submission
var acceptedDecisions = map[string]bool{
	"accepted":                      true,
	"accept":                        true,
	"accepted with minor revisions": true,
	"accepted with revisions":       true,
	"accept with revision":          true,
	"accepted as it is":             true,
	"accept with minor revision":    true,
}

// IsAccepted reports if a decision label allows a submission. Labels are compared
// ignoring case and surrounding whitespace.
func IsAccepted(decision string) bool {
	return acceptedDecisions[strings.ToLower(strings.TrimSpace(decision))]
}

// NotFoundError indicates the application ID is not on the roster
type NotFoundError struct {
	// ApplicationID which was looked up
	ApplicationID string
}

// Error implements error
func (e NotFoundError) Error() string {
	return fmt.Sprintf("application ID \"%s\" was not found", e.ApplicationID)
}

// NotEligibleError indicates the application ID is on the roster but its decision
// does not allow a submission
type NotEligibleError struct {
	// ApplicationID which was looked up
	ApplicationID string

	// Decision is the label as it appears on the roster, UndecidedLabel if empty
	Decision string
}

// Error implements error
func (e NotEligibleError) Error() string {
	return fmt.Sprintf("application \"%s\" is not eligible for submission, decision: %s",
		e.ApplicationID, e.Decision)
}

// RosterUnavailableError indicates the roster could not be read
type RosterUnavailableError struct {
	// Err is the cause
	Err error
}

// Error implements error
func (e RosterUnavailableError) Error() string {
	return fmt.Sprintf("roster unavailable: %s", e.Err.Error())
}

// Unwrap returns the cause
func (e RosterUnavailableError) Unwrap() error {
	return e.Err
}

// Checker decides if application identities may submit
type Checker struct {
	// Roster is read on every check
	Roster roster.Source

	// Timeout bounds each roster fetch, no deadline if zero
	Timeout time.Duration
}

// Check looks up applicationID on the roster. The first row with exactly the same
// identity is used. Returns NotFoundError, NotEligibleError or RosterUnavailableError
// if the identity cannot submit.
func (c Checker) Check(ctx context.Context, applicationID string) (*models.EligibilityResult, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	rows, err := c.Roster.FetchRows(ctx)
	if err != nil {
		return nil, RosterUnavailableError{Err: err}
	}

	// Identities are assumed unique, duplicates resolve to the first row
	var row *models.RosterRow
	for i := range rows {
		if rows[i].ApplicationID == applicationID {
			row = &rows[i]
			break
		}
	}

	if row == nil {
		return nil, NotFoundError{ApplicationID: applicationID}
	}

	if !IsAccepted(row.Decision) {
		decision := row.Decision
		if len(strings.TrimSpace(decision)) == 0 {
			decision = UndecidedLabel
		}

		return nil, NotEligibleError{
			ApplicationID: applicationID,
			Decision:      decision,
		}
	}

	return &models.EligibilityResult{
		Eligible:      true,
		ApplicationID: row.ApplicationID,
		Title:         row.Title,
	}, nil
}
