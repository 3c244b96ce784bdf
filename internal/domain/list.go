package domain

import "github.com/Gilberthb/Umunsi-sub002/pkg/pagination"

// SortOrder is the direction of a sorted listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListQuery holds the pagination, search and sort parameters shared by every
// list endpoint. Zero values are omitted from the request.
type ListQuery struct {
	Page      int       `validate:"gte=0"`
	Limit     int       `validate:"gte=0,lte=100"`
	Search    string    `validate:"max=200"`
	SortBy    string    `validate:"omitempty,alphanum"`
	SortOrder SortOrder `validate:"omitempty,oneof=asc desc"`
}

// Page is one page of a list endpoint along with the collection total.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}

// TotalPages returns ceil(Total / Limit).
func (p Page[T]) TotalPages() int {
	return pagination.TotalPages(p.Total, p.Limit)
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}
