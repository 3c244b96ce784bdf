package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/logger"
	"github.com/Gilberthb/Umunsi-sub002/pkg/pagination"
	"github.com/Gilberthb/Umunsi-sub002/pkg/validator"
)

// ErrorResponse is the body of every failed CMS API call.
type ErrorResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// ListResponse is the list envelope: {data, total, pagination}.
type ListResponse[T any] struct {
	Data       []T              `json:"data"`
	Total      int              `json:"total"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// NewListResponse builds a list envelope for one page of a collection of total items.
func NewListResponse[T any](data []T, total int, params pagination.Params) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	meta := pagination.NewMeta(total, params)
	return ListResponse[T]{Data: data, Total: total, Pagination: &meta}
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, the error is logged but headers are already sent so nothing can be done.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteResource writes the mutation envelope {"success": true, key: v}.
func WriteResource(w http.ResponseWriter, status int, key string, v any) {
	WriteJSON(w, status, map[string]any{
		"success": true,
		key:       v,
	})
}

// WriteMessage writes {"success": true, "message": msg}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{
		"success": true,
		"message": msg,
	})
}

// WriteError writes a standardized error response based on the error type.
// It prefers the request-scoped logger from context (set by the RequestLogger
// middleware) over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteJSON(w, appErr.Status, ErrorResponse{Message: appErr.Message, Code: appErr.Code, RequestID: requestID})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = apperrors.StatusMessage(http.StatusNotFound)
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code = "ALREADY_EXISTS"
		message = "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = "UNAUTHORIZED"
		message = apperrors.StatusMessage(http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrForbidden):
		code = "FORBIDDEN"
		message = apperrors.StatusMessage(http.StatusForbidden)
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorResponse{Message: message, Code: code, RequestID: requestID})
}

// WriteValidationError writes a 400 with field-level errors when err is a
// *validator.ValidationError.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "request validation failed",
			Code:    "VALIDATION_ERROR",
			Errors:  valErr.Fields(),
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "INVALID_INPUT"})
}

// ParseUUID validates that the given string is a valid UUID and returns it.
// If invalid, it writes a 400 Bad Request response with code INVALID_PARAMETER
// and returns uuid.Nil plus false, signaling the caller to return early.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "invalid id: " + param,
			Code:    "INVALID_PARAMETER",
		})
		return uuid.Nil, false
	}
	return id, true
}
