package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentType identifies which kind of user-submitted content a moderation
// candidate or log entry refers to.
type ContentType string

const (
	ContentTypeUsername           ContentType = "username"
	ContentTypeProfileBio         ContentType = "profile_bio"
	ContentTypeJourneyTitle       ContentType = "journey_title"
	ContentTypeJourneyDescription ContentType = "journey_description"
	ContentTypePostTitle          ContentType = "post_title"
	ContentTypePostContent        ContentType = "post_content"
	ContentTypePostImage          ContentType = "post_image"
)

// Valid reports whether the content type is part of the closed enumeration.
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeUsername, ContentTypeProfileBio, ContentTypeJourneyTitle,
		ContentTypeJourneyDescription, ContentTypePostTitle,
		ContentTypePostContent, ContentTypePostImage:
		return true
	}
	return false
}

// ModerationStatus is the lifecycle state of a moderation log entry.
type ModerationStatus string

const (
	ModerationStatusPending     ModerationStatus = "pending"
	ModerationStatusReviewed    ModerationStatus = "reviewed"
	ModerationStatusDismissed   ModerationStatus = "dismissed"
	ModerationStatusActionTaken ModerationStatus = "action_taken"
)

// Valid reports whether the status is a known lifecycle state.
func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationStatusPending, ModerationStatusReviewed,
		ModerationStatusDismissed, ModerationStatusActionTaken:
		return true
	}
	return false
}

// ReviewStatus reports whether the status is a valid target for a reviewer
// resolving an entry without enforcement.
func (s ModerationStatus) ReviewStatus() bool {
	return s == ModerationStatusReviewed || s == ModerationStatusDismissed
}

// ModerationCandidate is a unit of user-submitted content awaiting a verdict.
// It is built per mutation attempt and never persisted as-is. Exactly one of
// Text or ImageURL is set.
type ModerationCandidate struct {
	UserID          uuid.UUID
	ContentType     ContentType
	RelatedEntityID *uuid.UUID
	Text            string
	ImageURL        string
}

// Validate checks that the candidate is well-formed.
func (c ModerationCandidate) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if !c.ContentType.Valid() {
		return fmt.Errorf("invalid content type %q", c.ContentType)
	}
	if c.Text == "" && c.ImageURL == "" {
		return fmt.Errorf("candidate has no content")
	}
	if c.Text != "" && c.ImageURL != "" {
		return fmt.Errorf("candidate has both text and image content")
	}
	return nil
}

// LabelScore is one classifier output unit.
type LabelScore struct {
	Label  string  `json:"label"`
	Score  float64 `json:"score"`
	Unsafe bool    `json:"-"`
}

// ScanResult is the informational outcome of a non-blocking scan. It is
// produced whenever anything matched, regardless of confidence.
type ScanResult struct {
	Reason  string `json:"reason"`
	Preview string `json:"preview"`
}

// BlockDetails is the outcome of an enforcement decision. It is only
// produced when confidence crossed the applicable threshold, so
// Confidence >= Threshold always holds.
type BlockDetails struct {
	ContentType ContentType `json:"content_type"`
	Source      string      `json:"source"` // "text" or "image"
	Reason      string      `json:"reason"`
	Confidence  float64     `json:"confidence"`
	Threshold   float64     `json:"threshold"`
	Labels      []string    `json:"labels"`
}

// ModerationLogEntry is the durable review-queue record.
type ModerationLogEntry struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	UserID          uuid.UUID        `json:"user_id" db:"user_id"`
	ContentType     ContentType      `json:"content_type" db:"content_type"`
	RelatedEntityID *uuid.UUID       `json:"related_entity_id,omitempty" db:"related_entity_id"`
	FlagReason      string           `json:"flag_reason" db:"flag_reason"`
	ContentPreview  string           `json:"content_preview" db:"content_preview"`
	Status          ModerationStatus `json:"status" db:"status"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy      *uuid.UUID       `json:"reviewed_by,omitempty" db:"reviewed_by"`
}

// Validate checks entry fields before insertion.
func (e *ModerationLogEntry) Validate() error {
	if e.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if !e.ContentType.Valid() {
		return fmt.Errorf("invalid content type %q", e.ContentType)
	}
	if e.FlagReason == "" {
		return fmt.Errorf("flag reason is required")
	}
	if !e.Status.Valid() {
		return fmt.Errorf("invalid status %q", e.Status)
	}
	return nil
}

// ModerationEvent is published on the Redis moderation channel whenever a
// queue entry is inserted, for the admin live feed.
type ModerationEvent struct {
	Event string             `json:"event"`
	Entry ModerationLogEntry `json:"entry"`
}

const EventModerationFlagged = "moderation.flagged"

// ReviewRequest resolves a single queue entry.
type ReviewRequest struct {
	Status ModerationStatus `json:"status" binding:"required"`
}

// BulkReviewRequest resolves a batch of pending entries.
type BulkReviewRequest struct {
	IDs    []uuid.UUID      `json:"ids" binding:"required"`
	Status ModerationStatus `json:"status" binding:"required"`
}

// EnforcementAction names an admin side effect executed from the queue.
type EnforcementAction string

const (
	ActionBanUser          EnforcementAction = "ban_user"
	ActionDeleteContent    EnforcementAction = "delete_content"
	ActionRedactBio        EnforcementAction = "redact_bio"
	ActionReplaceUsername  EnforcementAction = "replace_username"
	ActionDeleteAllContent EnforcementAction = "delete_all_content"
)

// Valid reports whether the action is recognized.
func (a EnforcementAction) Valid() bool {
	switch a {
	case ActionBanUser, ActionDeleteContent, ActionRedactBio,
		ActionReplaceUsername, ActionDeleteAllContent:
		return true
	}
	return false
}

// EnforcementRequest triggers a destructive admin action on a queue entry.
// Confirm must be set explicitly; nothing runs without it.
type EnforcementRequest struct {
	Action   EnforcementAction `json:"action" binding:"required"`
	Confirm  bool              `json:"confirm"`
	Username string            `json:"username,omitempty"`
}
