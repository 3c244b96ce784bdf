package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/pagination"
	"github.com/Gilberthb/Umunsi-sub002/pkg/validator"
)

// envelope splits a JSON object body into its top-level members.
func envelope(resource string, body []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperrors.NewShapeError(resource, "empty response body", nil)
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, apperrors.NewShapeError(resource, "response is not a JSON object", err)
	}
	if members == nil {
		return nil, apperrors.NewShapeError(resource, "response is null", nil)
	}
	return members, nil
}

// requireSuccess checks the "success" flag of a mutation envelope.
func requireSuccess(resource string, members map[string]json.RawMessage) error {
	raw, ok := members["success"]
	if !ok {
		return apperrors.NewShapeError(resource, `missing "success"`, nil)
	}
	var success bool
	if err := json.Unmarshal(raw, &success); err != nil {
		return apperrors.NewShapeError(resource, `"success" is not a boolean`, err)
	}
	if !success {
		return apperrors.NewShapeError(resource, `"success" is false on a 2xx response`, nil)
	}
	return nil
}

// member decodes members[key] into a T and checks its required fields.
func member[T any](resource string, members map[string]json.RawMessage, key string) (T, error) {
	var out T
	raw, ok := members[key]
	if !ok || isNull(raw) {
		return out, apperrors.NewShapeError(resource, fmt.Sprintf("missing %q", key), nil)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, apperrors.NewShapeError(resource, fmt.Sprintf("%q has the wrong type", key), err)
	}
	if err := checkShape(out); err != nil {
		return out, apperrors.NewShapeError(resource, fmt.Sprintf("%q is incomplete", key), err)
	}
	return out, nil
}

// resourceDecoder decodes {success: true, <key>: T}.
func resourceDecoder[T any](resource, key string) func([]byte) (T, error) {
	return func(body []byte) (T, error) {
		var zero T
		members, err := envelope(resource, body)
		if err != nil {
			return zero, err
		}
		if err := requireSuccess(resource, members); err != nil {
			return zero, err
		}
		return member[T](resource, members, key)
	}
}

// ackDecoder accepts {success: true, ...} bodies that carry no resource.
func ackDecoder(resource string) func([]byte) (struct{}, error) {
	return func(body []byte) (struct{}, error) {
		members, err := envelope(resource, body)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, requireSuccess(resource, members)
	}
}

// listDecoder decodes {data: T[], total: n, pagination?: {...}}. The page and
// limit default to the values that were requested when the body does not
// echo them.
func listDecoder[T any](resource string, requested pagination.Params) func([]byte) (domain.Page[T], error) {
	return func(body []byte) (domain.Page[T], error) {
		var page domain.Page[T]
		members, err := envelope(resource, body)
		if err != nil {
			return page, err
		}

		rawData, ok := members["data"]
		if !ok || isNull(rawData) {
			return page, apperrors.NewShapeError(resource, `missing "data"`, nil)
		}
		if err := json.Unmarshal(rawData, &page.Items); err != nil {
			return page, apperrors.NewShapeError(resource, `"data" is not a list of `+resource, err)
		}
		for i := range page.Items {
			if err := checkShape(page.Items[i]); err != nil {
				return page, apperrors.NewShapeError(resource, fmt.Sprintf("item %d is incomplete", i), err)
			}
		}

		rawTotal, ok := members["total"]
		if !ok || isNull(rawTotal) {
			return page, apperrors.NewShapeError(resource, `missing "total"`, nil)
		}
		if err := json.Unmarshal(rawTotal, &page.Total); err != nil || page.Total < 0 {
			return page, apperrors.NewShapeError(resource, `"total" is not a non-negative integer`, err)
		}
		if page.Total < len(page.Items) {
			return page, apperrors.NewShapeError(resource, `"total" is smaller than the page`, nil)
		}

		page.Page, page.Limit = requested.Page, requested.Limit
		if raw, ok := members["pagination"]; ok && !isNull(raw) {
			var meta pagination.Meta
			if err := json.Unmarshal(raw, &meta); err != nil {
				return page, apperrors.NewShapeError(resource, `"pagination" is malformed`, err)
			}
			if meta.Page > 0 {
				page.Page = meta.Page
			}
			if meta.Limit > 0 {
				page.Limit = meta.Limit
			}
		}
		if page.Limit == 0 {
			page.Limit = max(len(page.Items), 1)
		}
		return page, nil
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// checkShape validates struct values (or pointers to them) against their
// validate tags. Other kinds have no declared shape.
func checkShape(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("nil value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validator.Validate(v)
}
