package apiclient

import (
	"context"
	"net/http"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

const mediaResource = "media"

// ListMedia returns one page of the media library.
func (c *Client) ListMedia(ctx context.Context, f domain.MediaFilter) (domain.Page[domain.Media], error) {
	if err := validatePayload(f); err != nil {
		return domain.Page[domain.Media]{}, err
	}
	q, params := listParams(f.ListQuery)
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	return call(ctx, c, request{
		method:   http.MethodGet,
		path:     "/media",
		query:    q,
		resource: mediaResource,
	}, listDecoder[domain.Media](mediaResource, params))
}

// UploadMedia adds a file to the media library. alt is optional.
func (c *Client) UploadMedia(ctx context.Context, file domain.Upload, alt string) (*domain.Media, error) {
	var fields map[string]string
	if alt != "" {
		fields = map[string]string{"alt": alt}
	}
	body, err := newUpload("file", file, false, fields)
	if err != nil {
		return nil, err
	}
	return call(ctx, c, request{
		method:   http.MethodPost,
		path:     "/media/upload",
		upload:   body,
		resource: mediaResource,
	}, resourceDecoder[*domain.Media](mediaResource, "media"))
}

// DeleteMedia removes a file from the library.
func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	if err := requireID("media", id); err != nil {
		return err
	}
	_, err := call(ctx, c, request{
		method:   http.MethodDelete,
		path:     "/media/" + escape(id),
		resource: mediaResource,
	}, ackDecoder(mediaResource))
	return err
}
