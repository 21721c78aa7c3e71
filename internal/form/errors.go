package form

import "fmt"

// ErrorKind tags a ValidationError.
type ErrorKind string

const (
	KindLocationNotConfirmed ErrorKind = "location_not_confirmed"
	KindBillMissing          ErrorKind = "bill_missing"
	KindBillMalformed        ErrorKind = "bill_malformed"
	KindBillTooLow           ErrorKind = "bill_too_low"
)

// ValidationError is a user-facing reason the form cannot be submitted.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

// Is matches on Kind so callers can compare against the sentinels below
// regardless of the message text.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrLocationNotConfirmed = &ValidationError{
		Kind:    KindLocationNotConfirmed,
		Message: "Please pin your roof on the map, search for a place, or use your current location.",
	}
	ErrBillMissing = &ValidationError{
		Kind:    KindBillMissing,
		Message: "Please enter your monthly electricity bill.",
	}
	ErrBillMalformed = &ValidationError{
		Kind:    KindBillMalformed,
		Message: "Monthly bill must be a positive number.",
	}
	ErrBillTooLow = &ValidationError{
		Kind:    KindBillTooLow,
		Message: "Monthly bill is too low.",
	}
)

func billTooLow(min float64) *ValidationError {
	return &ValidationError{
		Kind:    KindBillTooLow,
		Message: fmt.Sprintf("Monthly bill must be at least %.0f LKR.", min),
	}
}
