package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkError_UnwrapsToSentinelAndCause(t *testing.T) {
	err := &NetworkError{Op: "GET /auth/me", Err: context.DeadlineExceeded}

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "GET /auth/me")
	assert.Contains(t, err.Error(), "network error")
}

func TestNetworkError_NilCause(t *testing.T) {
	err := &NetworkError{Op: "GET /"}
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Len(t, err.Unwrap(), 1)
}

func TestHTTPError_IsStatusSentinels(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusConflict, ErrConflict},
		{http.StatusBadRequest, ErrInvalidInput},
		{http.StatusUnprocessableEntity, ErrInvalidInput},
		{http.StatusGone, ErrGone},
		{http.StatusLocked, ErrLocked},
		{http.StatusServiceUnavailable, ErrServiceUnavail},
		{http.StatusBadGateway, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &HTTPError{Status: tt.status, Message: "x"})
			assert.True(t, errors.Is(err, tt.target))
		})
	}
}

func TestHTTPError_DoesNotMatchOtherSentinels(t *testing.T) {
	err := &HTTPError{Status: http.StatusNotFound, Message: "missing"}
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrNetwork))
	assert.False(t, errors.Is(err, ErrShape))
	assert.Equal(t, "http 404: missing", err.Error())
}

func TestHTTPError_Temporary(t *testing.T) {
	assert.True(t, (&HTTPError{Status: 500}).Temporary())
	assert.True(t, (&HTTPError{Status: 429}).Temporary())
	assert.False(t, (&HTTPError{Status: 404}).Temporary())
}

func TestShapeError(t *testing.T) {
	inner := errors.New("json: cannot unmarshal string into int")
	err := NewShapeError("article", "decode body", inner)

	assert.True(t, errors.Is(err, ErrShape))
	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "article")
	assert.Contains(t, err.Error(), "decode body")

	bare := NewShapeError("user", "missing key \"user\"", nil)
	assert.Equal(t, `user: unexpected response shape: missing key "user"`, bare.Error())
}

func TestAuthError_MessageIsVerbatim(t *testing.T) {
	cause := &HTTPError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	err := &AuthError{Status: http.StatusUnauthorized, Message: "Invalid credentials", Err: cause}

	assert.Equal(t, "Invalid credentials", err.Error())
	assert.True(t, errors.Is(err, ErrAuth))
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
}

func TestAuthError_AlwaysMatchesUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  *AuthError
	}{
		{"forbidden", &AuthError{Status: http.StatusForbidden, Message: "Account is inactive",
			Err: &HTTPError{Status: http.StatusForbidden, Message: "Account is inactive"}}},
		{"locked", &AuthError{Status: http.StatusLocked, Message: "Account is locked",
			Err: &HTTPError{Status: http.StatusLocked, Message: "Account is locked"}}},
		{"validation", &AuthError{Message: "identifier is required", Err: InvalidInput("identifier is required")}},
		{"no cause", &AuthError{Message: "rejected"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error = tt.err
			assert.True(t, errors.Is(err, ErrUnauthorized))
			assert.True(t, errors.Is(err, ErrAuth))
			assert.False(t, errors.Is(err, ErrNetwork))
		})
	}
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "authentication required", StatusMessage(401))
	assert.Equal(t, "access denied", StatusMessage(403))
	assert.Equal(t, "resource not found", StatusMessage(404))
	assert.Equal(t, "too many requests", StatusMessage(429))
	assert.Equal(t, "request failed", StatusMessage(418))
	assert.Equal(t, "server error", StatusMessage(502))
	assert.Equal(t, "unexpected status 302", StatusMessage(302))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&NetworkError{Op: "x", Err: errors.New("refused")}))
	assert.True(t, IsTransient(fmt.Errorf("w: %w", &HTTPError{Status: 503})))
	assert.False(t, IsTransient(&HTTPError{Status: 401}))
	assert.False(t, IsTransient(NewShapeError("user", "bad", nil)))
	assert.False(t, IsTransient(errors.New("plain")))
}
