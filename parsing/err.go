package parsing

import (
	"fmt"
)

// ParseError provides details about a failure to parse a submission form. ParseErrors
// are meant to be presented to users.
type ParseError struct {
	// What indicates the part of the form that failed to be parsed
	What string

	// Why indicates why the part failed to be parsed
	Why string

	// FixInstructions for the user to remedy this error
	// Leave this field blank if there is nothing the user can do to fix the issue,
	// ex., internal server error
	FixInstructions string

	// InternalError is a non user presentable error which will be logged for
	// debug purposes. Can be nil if error is entirely caused by user's input.
	// If not nil the error will be treated as if the server messed up.
	InternalError error
}

// Error returns an internal error string which should not be shown to the user
func (e ParseError) Error() string {
	if e.InternalError != nil {
		return fmt.Sprintf("%s (%s)", e.UserError(), e.InternalError.Error())
	}

	return e.UserError()
}

// UserError returns an error string meant to be displayed to the user
func (e ParseError) UserError() string {
	if len(e.FixInstructions) == 0 {
		return fmt.Sprintf("failed to parse %s: %s", e.What, e.Why)
	}

	return fmt.Sprintf("failed to parse %s: %s: %s", e.What, e.Why, e.FixInstructions)
}

// Unwrap returns the internal error
func (e ParseError) Unwrap() error {
	return e.InternalError
}
