package analysis

import (
	"errors"
	"fmt"
)

// DefaultFailureMessage is shown when the backend gave no reason.
const DefaultFailureMessage = "Analysis failed. Ensure Backend is running."

// ErrSubmissionInFlight is returned when Submit is called while another
// submission is running. Nothing changes.
var ErrSubmissionInFlight = errors.New("an analysis is already running")

// NetworkError means the backend could not be reached or did not answer.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("analysis request: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a response the backend produced but that carries no usable
// report.
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("analysis backend returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("analysis backend returned HTTP %d: %s", e.StatusCode, e.Detail)
}

// UserMessage picks the text to show for a submission failure.
func UserMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) && be.Detail != "" {
		return be.Detail
	}
	return DefaultFailureMessage
}
