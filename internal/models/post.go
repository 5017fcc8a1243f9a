package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RichDoc is a rich-text editor document: a tree of nodes, each optionally
// carrying text, attrs and child content.
type RichDoc map[string]any

// Post is a single entry inside a journey. Content is a rich document stored
// as JSONB.
type Post struct {
	ID        uuid.UUID `json:"id" db:"id"`
	JourneyID uuid.UUID `json:"journey_id" db:"journey_id"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	Title     string    `json:"title" db:"title"`
	Content   RichDoc   `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks basic post fields
func (p *Post) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(p.Title) > 200 {
		return fmt.Errorf("title too long")
	}
	if p.JourneyID == uuid.Nil {
		return fmt.Errorf("journey id is required")
	}
	return nil
}

type CreatePostRequest struct {
	JourneyID uuid.UUID `json:"journey_id" binding:"required"`
	Title     string    `json:"title" binding:"required"`
	Content   RichDoc   `json:"content" binding:"required"`
}

type UpdatePostRequest struct {
	Title   *string `json:"title,omitempty"`
	Content RichDoc `json:"content,omitempty"`
}
