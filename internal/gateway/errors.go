package gateway

import (
	"errors"
	"fmt"
)

// ErrSessionExpired matches every *AuthExpiredError via errors.Is.
var ErrSessionExpired = errors.New("session expired")

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RemoteError is any non-2xx response that is not an expired session.
// Message is suitable for display.
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// AuthExpiredError is returned when a 401 could not be recovered by a token
// refresh. The credential store has been cleared by the time it is seen.
type AuthExpiredError struct {
	Cause error
}

func (e *AuthExpiredError) Error() string {
	if e.Cause == nil {
		return ErrSessionExpired.Error()
	}
	return fmt.Sprintf("%v: %v", ErrSessionExpired, e.Cause)
}

func (e *AuthExpiredError) Is(target error) bool {
	return target == ErrSessionExpired
}

func (e *AuthExpiredError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode
	}
	return 0
}
