package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"

	"github.com/stretchr/testify/assert"
)

// makeResponse creates an *http.Response with the given status code and body string.
func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_TopLevelMessage(t *testing.T) {
	resp := makeResponse(http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`)
	err := ParseResponseError(resp)

	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.Equal(t, "Invalid credentials", err.Message)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestParseResponseError_FlatErrorString(t *testing.T) {
	resp := makeResponse(http.StatusBadRequest, `{"error":"title is required"}`)
	err := ParseResponseError(resp)

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "title is required", err.Message)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestParseResponseError_NestedError(t *testing.T) {
	resp := makeResponse(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"article not found"}}`)
	err := ParseResponseError(resp)

	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "article not found", err.Message)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestParseResponseError_TopLevelWinsOverNested(t *testing.T) {
	resp := makeResponse(http.StatusConflict, `{"message":"slug taken","error":{"code":"CONFLICT","message":"other"}}`)
	err := ParseResponseError(resp)

	assert.Equal(t, "slug taken", err.Message)
	assert.Equal(t, "CONFLICT", err.Code)
}

func TestParseResponseError_ServerError(t *testing.T) {
	resp := makeResponse(http.StatusInternalServerError, `{"message":"database unavailable"}`)
	err := ParseResponseError(resp)

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "database unavailable", err.Message)
	assert.True(t, err.Temporary())
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	resp := makeResponse(http.StatusBadGateway, `upstream connect error`)
	err := ParseResponseError(resp)

	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Equal(t, "server error", err.Message)
}

func TestParseResponseError_EmptyBody(t *testing.T) {
	resp := makeResponse(http.StatusForbidden, ``)
	err := ParseResponseError(resp)

	assert.Equal(t, "access denied", err.Message)
}

func TestParseResponseError_HTMLBody(t *testing.T) {
	resp := makeResponse(http.StatusNotFound, `<html><body>Not Found</body></html>`)
	err := ParseResponseError(resp)

	assert.Equal(t, "resource not found", err.Message)
}

func TestParseResponseError_NullError(t *testing.T) {
	resp := makeResponse(http.StatusTeapot, `{"error":null}`)
	err := ParseResponseError(resp)

	assert.Equal(t, http.StatusTeapot, err.Status)
	assert.Equal(t, "request failed", err.Message)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(399))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(200))
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(200))
	assert.True(t, IsSuccess(204))
	assert.False(t, IsSuccess(304))
	assert.False(t, IsSuccess(404))
}
