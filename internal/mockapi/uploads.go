package mockapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
)

type uploadedFile struct {
	name        string
	contentType string
	size        int64
}

// readUpload consumes the named file part of a multipart request.
func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64, imagesOnly bool) (*uploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return nil, apperrors.InvalidInput("Expected a multipart form no larger than " + humanSize(limit))
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("No %s file uploaded", field))
	}
	defer func() { _ = f.Close() }()

	n, err := io.Copy(io.Discard, io.LimitReader(f, limit+1))
	if err != nil {
		return nil, apperrors.InvalidInput("Could not read uploaded file")
	}
	if n > limit {
		return nil, apperrors.InvalidInput("File exceeds " + humanSize(limit))
	}

	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(hdr.Filename))); byExt != "" {
			ct = byExt
		}
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	if imagesOnly && !strings.HasPrefix(ct, "image/") {
		return nil, apperrors.InvalidInput("Only image files are allowed")
	}
	return &uploadedFile{name: filepath.Base(hdr.Filename), contentType: ct, size: n}, nil
}

func humanSize(n int64) string {
	return fmt.Sprintf("%d MiB", n>>20)
}
