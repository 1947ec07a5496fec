package appointments

import "errors"

var (
	// ErrInvalidRequest wraps every ValidationError.
	ErrInvalidRequest = errors.New("appointments: invalid request")

	// ErrDuplicate is returned when the same request was committed within
	// the dedupe window.
	ErrDuplicate = errors.New("appointments: request already submitted")

	// ErrDelivery is returned when the team mail could not be sent. The
	// reservation is released so the request can be retried.
	ErrDelivery = errors.New("appointments: delivery failed")

	// ErrNotFound is returned when an appointment is not found
	ErrNotFound = errors.New("appointments: not found")
)

// ValidationError carries the user facing reason a request was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }
