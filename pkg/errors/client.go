package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for the client-side failure classes. Every typed error below
// unwraps to exactly one of them.
var (
	ErrNetwork = errors.New("network error")
	ErrShape   = errors.New("unexpected response shape")
	ErrAuth    = errors.New("authentication failed")
)

// NetworkError reports a request that never produced a response: DNS, dial,
// timeout, TLS, an open circuit breaker.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrNetwork, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return nonNil(ErrNetwork, e.Err)
}

// HTTPError reports a response with a non-2xx status. Message is the
// backend-provided message or a generic fallback for the status class.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Is lets callers match an HTTPError against the status sentinels,
// e.g. errors.Is(err, ErrNotFound) for a 404.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrInvalidInput:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrGone:
		return e.Status == http.StatusGone
	case ErrLocked:
		return e.Status == http.StatusLocked
	case ErrServiceUnavail:
		return e.Status == http.StatusServiceUnavailable
	case ErrInternal:
		return e.Status >= 500
	}
	return false
}

// Temporary reports whether the status is worth retrying by a higher-level policy.
func (e *HTTPError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// ShapeError reports a response body that does not match the contract of the call.
type ShapeError struct {
	Resource string
	Reason   string
	Err      error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Resource, ErrShape, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Resource, ErrShape, e.Reason)
}

func (e *ShapeError) Unwrap() []error {
	return nonNil(ErrShape, e.Err)
}

// AuthError reports rejected credentials or a failed authorization. Error()
// returns the backend message verbatim so it can be shown to the user.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() []error {
	return nonNil(ErrAuth, e.Err)
}

// Is matches ErrUnauthorized for every AuthError, whatever its status or
// cause: the caller is not signed in.
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// NewShapeError builds a ShapeError.
func NewShapeError(resource, reason string, err error) *ShapeError {
	return &ShapeError{Resource: resource, Reason: reason, Err: err}
}

// StatusMessage is the fallback message used when a non-2xx response carries
// no message of its own.
func StatusMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "authentication required"
	case status == http.StatusForbidden:
		return "access denied"
	case status == http.StatusNotFound:
		return "resource not found"
	case status == http.StatusTooManyRequests:
		return "too many requests"
	case status >= 500:
		return "server error"
	case status >= 400:
		return "request failed"
	default:
		return fmt.Sprintf("unexpected status %d", status)
	}
}

// IsTransient reports whether err is a failure class that a retry loop may
// reasonably expect to clear up on its own.
func IsTransient(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	return false
}

func nonNil(errs ...error) []error {
	out := errs[:0:0]
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
