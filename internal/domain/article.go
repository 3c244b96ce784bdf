package domain

import "time"

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "DRAFT"
	StatusPublished ArticleStatus = "PUBLISHED"
	StatusArchived  ArticleStatus = "ARCHIVED"
)

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Article is a news story.
type Article struct {
	ID            string        `json:"id" validate:"required"`
	Title         string        `json:"title" validate:"required"`
	Slug          string        `json:"slug" validate:"required"`
	Excerpt       string        `json:"excerpt"`
	Content       string        `json:"content"`
	FeaturedImage *string       `json:"featuredImage,omitempty"`
	Status        ArticleStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED"`
	IsFeatured    bool          `json:"isFeatured"`
	ViewCount     int           `json:"viewCount"`
	Tags          []string      `json:"tags"`
	CategoryID    string        `json:"categoryId"`
	Category      *CategoryRef  `json:"category,omitempty"`
	AuthorID      string        `json:"authorId"`
	Author        *AuthorRef    `json:"author,omitempty"`
	PublishedAt   *time.Time    `json:"publishedAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CategoryRef is the category summary embedded in an article.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// AuthorRef is the author summary embedded in an article.
type AuthorRef struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ArticleInput is the payload for creating or replacing an article.
// An empty Slug is derived from the title before sending.
type ArticleInput struct {
	Title         string        `json:"title" validate:"required,max=200"`
	Slug          string        `json:"slug" validate:"omitempty,slug"`
	Excerpt       string        `json:"excerpt,omitempty" validate:"max=500"`
	Content       string        `json:"content" validate:"required"`
	CategoryID    string        `json:"categoryId" validate:"required"`
	Tags          []string      `json:"tags,omitempty" validate:"max=20,dive,required,max=50"`
	Status        ArticleStatus `json:"status,omitempty" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	IsFeatured    bool          `json:"isFeatured"`
	FeaturedImage string        `json:"featuredImage,omitempty" validate:"omitempty,max=500"`
}

// ArticleFilter narrows an article listing.
type ArticleFilter struct {
	ListQuery
	Status     ArticleStatus `validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	CategoryID string
	// Featured filters on the featured flag when non-nil.
	Featured *bool
}
