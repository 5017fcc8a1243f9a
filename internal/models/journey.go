package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Journey is a travel log that groups posts.
type Journey struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks basic journey fields
func (j *Journey) Validate() error {
	if j.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(j.Title) > 200 {
		return fmt.Errorf("title too long")
	}
	return nil
}

type CreateJourneyRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateJourneyRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}
