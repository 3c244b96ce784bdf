package apiclient

import (
	"net/url"
	"strconv"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/pagination"
	"github.com/Gilberthb/Umunsi-sub002/pkg/validator"
)

// listParams encodes the shared list parameters and returns the effective
// page and limit.
func listParams(q domain.ListQuery) (url.Values, pagination.Params) {
	params := pagination.New(q.Page, q.Limit)
	v := url.Values{}
	params.Encode(v)
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", string(q.SortOrder))
	}
	return v, params
}

func setBool(v url.Values, key string, b *bool) {
	if b != nil {
		v.Set(key, strconv.FormatBool(*b))
	}
}

// validatePayload rejects invalid input before anything is sent.
func validatePayload(v any) error {
	if err := validator.Validate(v); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return nil
}

// requireID rejects an empty resource id.
func requireID(resource, id string) error {
	if id == "" {
		return apperrors.InvalidInput(resource + " id is required")
	}
	return nil
}

// noPaging is used for endpoints that return their whole collection.
var noPaging = pagination.Params{Page: 1}
