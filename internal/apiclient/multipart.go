package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
)

// maxUploadBytes bounds the size of a single upload.
const maxUploadBytes = 50 << 20

// multipartBody is one file part plus optional text fields.
type multipartBody struct {
	field  string
	file   domain.Upload
	fields map[string]string
}

// encode buffers the form so the request body is replayable.
func (m *multipartBody) encode() (*bytes.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range m.fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", k, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, m.field, filepath.Base(m.file.Filename)))
	h.Set("Content-Type", m.file.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	n, err := io.Copy(part, io.LimitReader(m.file.Body, maxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload %s: %w", m.file.Filename, err)
	}
	if n > maxUploadBytes {
		return nil, "", apperrors.InvalidInput(fmt.Sprintf("upload %s exceeds %d MiB", m.file.Filename, maxUploadBytes>>20))
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), w.FormDataContentType(), nil
}

// newUpload checks an upload before it is encoded. When imagesOnly is set the
// declared content type must be an image.
func newUpload(field string, up domain.Upload, imagesOnly bool, fields map[string]string) (*multipartBody, error) {
	if up.Body == nil {
		return nil, apperrors.InvalidInput("upload has no content")
	}
	if strings.TrimSpace(up.Filename) == "" {
		return nil, apperrors.InvalidInput("upload needs a file name")
	}
	if up.ContentType == "" {
		up.ContentType = "application/octet-stream"
	}
	if imagesOnly && !strings.HasPrefix(up.ContentType, "image/") {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s is not an image (%s)", up.Filename, up.ContentType))
	}
	return &multipartBody{field: field, file: up, fields: fields}, nil
}
