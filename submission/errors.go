package submission

import (
	"fmt"
)

// ValidationError indicates a submission request was malformed. Nothing was
// changed in the store. The message is safe to show to the submitter.
type ValidationError struct {
	// Err describes the problems found
	Err error
}

// Error implements error
func (e ValidationError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the cause
func (e ValidationError) Unwrap() error {
	return e.Err
}

// UpstreamServiceError indicates a remote service failed or did not answer in time
type UpstreamServiceError struct {
	// Op is the operation which failed
	Op string

	// Err is the cause
	Err error
}

// Error implements error
func (e UpstreamServiceError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.Op, e.Err.Error())
}

// Unwrap returns the cause
func (e UpstreamServiceError) Unwrap() error {
	return e.Err
}

// RenderIOError indicates the summary document could not be written to or read
// from transient local storage
type RenderIOError struct {
	// Err is the cause
	Err error
}

// Error implements error
func (e RenderIOError) Error() string {
	return fmt.Sprintf("failed to render summary document: %s", e.Err.Error())
}

// Unwrap returns the cause
func (e RenderIOError) Unwrap() error {
	return e.Err
}

// CleanupError indicates transient local state could not be removed. It is only
// ever logged, it never fails a submission.
type CleanupError struct {
	// Path of the file which was not removed
	Path string

	// Err is the cause
	Err error
}

// Error implements error
func (e CleanupError) Error() string {
	return fmt.Sprintf("failed to remove transient file \"%s\": %s", e.Path, e.Err.Error())
}

// Unwrap returns the cause
func (e CleanupError) Unwrap() error {
	return e.Err
}
