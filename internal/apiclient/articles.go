package apiclient

import (
	"context"
	"net/http"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	"github.com/Gilberthb/Umunsi-sub002/pkg/slug"
)

const articlesResource = "articles"

// ListArticles returns one page of articles matching f.
func (c *Client) ListArticles(ctx context.Context, f domain.ArticleFilter) (domain.Page[domain.Article], error) {
	if err := validatePayload(f); err != nil {
		return domain.Page[domain.Article]{}, err
	}
	q, params := listParams(f.ListQuery)
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.CategoryID != "" {
		q.Set("category", f.CategoryID)
	}
	setBool(q, "featured", f.Featured)

	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/articles",
		query:    q,
		resource: articlesResource,
	}, listDecoder[domain.Article](articlesResource, params))
}

// GetArticle fetches an article by id.
func (c *Client) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	if err := requireID("article", id); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/articles/" + escape(id),
		resource: articlesResource,
	}, resourceDecoder[*domain.Article](articlesResource, "article"))
}

// GetArticleBySlug fetches a published article the way the public reader does.
func (c *Client) GetArticleBySlug(ctx context.Context, s string) (*domain.Article, error) {
	if err := requireID("article slug", s); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/articles/slug/" + escape(s),
		resource: articlesResource,
	}, resourceDecoder[*domain.Article](articlesResource, "article"))
}

// CreateArticle creates an article. A missing slug is derived from the title.
func (c *Client) CreateArticle(ctx context.Context, in domain.ArticleInput) (*domain.Article, error) {
	in = withArticleSlug(in)
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/articles",
		body:     in,
		resource: articlesResource,
	}, resourceDecoder[*domain.Article](articlesResource, "article"))
}

// UpdateArticle replaces an article.
func (c *Client) UpdateArticle(ctx context.Context, id string, in domain.ArticleInput) (*domain.Article, error) {
	if err := requireID("article", id); err != nil {
		return nil, err
	}
	in = withArticleSlug(in)
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPut,
		path:     "/articles/" + escape(id),
		body:     in,
		resource: articlesResource,
	}, resourceDecoder[*domain.Article](articlesResource, "article"))
}

type statusPatch struct {
	Status domain.ArticleStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// SetArticleStatus publishes, unpublishes or archives an article.
func (c *Client) SetArticleStatus(ctx context.Context, id string, status domain.ArticleStatus) (*domain.Article, error) {
	if err := requireID("article", id); err != nil {
		return nil, err
	}
	body := statusPatch{Status: status}
	if err := validatePayload(body); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPatch,
		path:     "/articles/" + escape(id) + "/status",
		body:     body,
		resource: articlesResource,
	}, resourceDecoder[*domain.Article](articlesResource, "article"))
}

type featuredPatch struct {
	IsFeatured bool `json:"isFeatured"`
}

// SetArticleFeatured toggles the featured flag.
func (c *Client) SetArticleFeatured(ctx context.Context, id string, featured bool) (*domain.Article, error) {
	if err := requireID("article", id); err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPatch,
		path:     "/articles/" + escape(id) + "/featured",
		body:     featuredPatch{IsFeatured: featured},
		resource: articlesResource,
	}, resourceDecoder[*domain.Article](articlesResource, "article"))
}

// DeleteArticle removes an article.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	if err := requireID("article", id); err != nil {
		return err
	}
	_, err := call(ctx, c, request{
		method:   http.MethodDelete,
		path:     "/articles/" + escape(id),
		resource: articlesResource,
	}, ackDecoder(articlesResource))
	return err
}

// UploadFeaturedImage attaches an image to an article.
func (c *Client) UploadFeaturedImage(ctx context.Context, id string, img domain.Upload) (*domain.Article, error) {
	if err := requireID("article", id); err != nil {
		return nil, err
	}
	body, err := newUpload("image", img, true, nil)
	if err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/articles/" + escape(id) + "/featured-image",
		upload:   body,
		resource: articlesResource,
	}, resourceDecoder[*domain.Article](articlesResource, "article"))
}

// RecordView counts one read of an article and returns the new view count.
func (c *Client) RecordView(ctx context.Context, id string) (int, error) {
	if err := requireID("article", id); err != nil {
		return 0, err
	}
	return call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/articles/" + escape(id) + "/view",
		resource: articlesResource,
	}, resourceDecoder[int](articlesResource, "viewCount"))
}

func withArticleSlug(in domain.ArticleInput) domain.ArticleInput {
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Title)
	}
	return in
}
