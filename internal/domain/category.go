package domain

import "time"

// Category groups articles by section.
type Category struct {
	ID           string    `json:"id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Slug         string    `json:"slug" validate:"required"`
	Description  string    `json:"description"`
	Color        string    `json:"color,omitempty"`
	ParentID     *string   `json:"parentId,omitempty"`
	IsActive     bool      `json:"isActive"`
	ArticleCount int       `json:"articleCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CategoryInput is the payload for creating or replacing a category.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        string  `json:"slug" validate:"omitempty,slug"`
	Description string  `json:"description,omitempty" validate:"max=500"`
	Color       string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
	ParentID    *string `json:"parentId,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}
