package domain

import (
	"io"
	"time"
)

// Media is an uploaded file.
type Media struct {
	ID           string    `json:"id" validate:"required"`
	Filename     string    `json:"filename" validate:"required"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	URL          string    `json:"url" validate:"required"`
	Alt          string    `json:"alt,omitempty"`
	UploadedBy   string    `json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Upload is a binary payload sent as a multipart file part.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// MediaFilter narrows a media listing.
type MediaFilter struct {
	ListQuery
	// Type matches the leading part of the MIME type, e.g. "image".
	Type string `validate:"omitempty,alpha"`
}
