package registration

import (
	"errors"
	"fmt"
)

var ErrMissingEvent = errors.New("event is not loaded")

// ValidationError is a client-side check that failed before anything was
// sent to the backend.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("registration.%s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
