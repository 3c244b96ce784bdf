package httpclient

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// errorBody covers the error envelopes the CMS API emits:
//
//	{"success": false, "message": "Invalid credentials"}
//	{"error": "Invalid credentials"}
//	{"error": {"code": "UNAUTHORIZED", "message": "Invalid credentials"}}
type errorBody struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   json.RawMessage `json:"error"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an *errors.HTTPError carrying the status and the backend message.
// When the body has no recognizable message, a generic message for the status
// class is used. The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) *apperrors.HTTPError {
	defer func() { _ = resp.Body.Close() }()

	httpErr := &apperrors.HTTPError{Status: resp.StatusCode}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		httpErr.Code, httpErr.Message = extractMessage(bodyBytes)
	}
	if httpErr.Message == "" {
		httpErr.Message = apperrors.StatusMessage(resp.StatusCode)
	}
	return httpErr
}

func extractMessage(body []byte) (code, message string) {
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil {
		return "", ""
	}
	code, message = eb.Code, eb.Message

	if len(eb.Error) > 0 {
		var nested nestedError
		var flat string
		switch {
		case json.Unmarshal(eb.Error, &nested) == nil:
			if code == "" {
				code = nested.Code
			}
			if message == "" {
				message = nested.Message
			}
		case json.Unmarshal(eb.Error, &flat) == nil:
			if message == "" {
				message = flat
			}
		}
	}
	return code, strings.TrimSpace(message)
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

// IsSuccess returns true for 2xx statuses.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
