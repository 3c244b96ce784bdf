package apiclient

import (
	"context"
	"net/http"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	"github.com/Gilberthb/Umunsi-sub002/pkg/slug"
)

const categoriesResource = "categories"

// ListCategories returns one page of categories.
func (c *Client) ListCategories(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Category], error) {
	if err := validatePayload(q); err != nil {
		return domain.Page[domain.Category]{}, err
	}
	values, params := listParams(q)
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/categories",
		query:    values,
		resource: categoriesResource,
	}, listDecoder[domain.Category](categoriesResource, params))
}

// GetCategory fetches a category by id.
func (c *Client) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	if err := requireID("category", id); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/categories/" + escape(id),
		resource: categoriesResource,
	}, resourceDecoder[*domain.Category](categoriesResource, "category"))
}

// CreateCategory creates a category. A missing slug is derived from the name.
func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Name)
	}
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/categories",
		body:     in,
		resource: categoriesResource,
	}, resourceDecoder[*domain.Category](categoriesResource, "category"))
}

// UpdateCategory replaces a category.
func (c *Client) UpdateCategory(ctx context.Context, id string, in domain.CategoryInput) (*domain.Category, error) {
	if err := requireID("category", id); err != nil {
		return nil, err
	}
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Name)
	}
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPut,
		path:     "/categories/" + escape(id),
		body:     in,
		resource: categoriesResource,
	}, resourceDecoder[*domain.Category](categoriesResource, "category"))
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if err := requireID("category", id); err != nil {
		return err
	}
	_, err := call(ctx, c, request{
		method:   http.MethodDelete,
		path:     "/categories/" + escape(id),
		resource: categoriesResource,
	}, ackDecoder(categoriesResource))
	return err
}
