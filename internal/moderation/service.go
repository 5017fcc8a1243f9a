package moderation

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waypost/backend/config"
	"github.com/waypost/backend/internal/models"
)

// Recorder appends entries to the moderation review queue.
type Recorder interface {
	Insert(entry *models.ModerationLogEntry) error
}

// EventPublisher notifies listeners (the admin live feed) about new queue
// entries. Publishing is best-effort.
type EventPublisher interface {
	PublishModerationEvent(event interface{}) error
}

// BlockResponse is returned to a caller whose mutation was rejected. Message
// is safe to surface to the end user.
type BlockResponse struct {
	Message string               `json:"message"`
	Details *models.BlockDetails `json:"details"`
}

// Service ties the policy engine to the review queue. It owns the two call
// paths of every content mutation: Enforce gates the write, LogCandidate
// records findings afterwards without ever blocking.
type Service struct {
	policy     *Policy
	classifier *Classifier
	scanner    *Scanner
	recorder   Recorder
	events     EventPublisher
	cfg        config.ModerationConfig
}

// NewService creates the moderation service. events may be nil.
func NewService(policy *Policy, classifier *Classifier, scanner *Scanner, recorder Recorder, events EventPublisher, cfg config.ModerationConfig) *Service {
	return &Service{
		policy:     policy,
		classifier: classifier,
		scanner:    scanner,
		recorder:   recorder,
		events:     events,
		cfg:        cfg,
	}
}

// Enforce evaluates candidates in the order given and returns the first
// block found, short-circuiting the remaining checks. Callers pass title
// before body before images so the ordering contract is observable. A block
// is recorded in the queue before it is returned, so the attempt itself is
// auditable. Nil means every candidate passed and the mutation may proceed.
func (s *Service) Enforce(ctx context.Context, candidates ...models.ModerationCandidate) *BlockResponse {
	for _, cand := range candidates {
		if cand.Text == "" && cand.ImageURL == "" {
			continue
		}
		if resp := s.enforceOne(ctx, cand); resp != nil {
			return resp
		}
	}
	return nil
}

func (s *Service) enforceOne(ctx context.Context, cand models.ModerationCandidate) *BlockResponse {
	var details *models.BlockDetails
	if cand.ImageURL != "" {
		details = s.policy.ImageBlockDetails(ctx, cand.ContentType, cand.ImageURL)
	} else {
		details = s.policy.TextBlockDetails(ctx, cand.ContentType, cand.Text)
	}
	if details == nil {
		return nil
	}

	s.record(cand, flagReason(details))

	return &BlockResponse{
		Message: fmt.Sprintf("Your %s was blocked: %s (confidence %.0f%%, threshold %.0f%%)",
			humanContentType(cand.ContentType), details.Reason,
			details.Confidence*100, details.Threshold*100),
		Details: details,
	}
}

// scoreSuffixRe matches reasons that already end with a confidence score,
// e.g. "toxic (0.95)".
var scoreSuffixRe = regexp.MustCompile(`\(\d+(\.\d+)?\)\s*$`)

// LogCandidate is the passive path: invoked after a mutation persisted, it
// re-scans the content and appends a pending queue entry when anything
// matched. It never blocks the caller; persistence failures are logged and
// swallowed. The remote classifier runs first, with the local scanner as
// fallback when it is unavailable.
func (s *Service) LogCandidate(ctx context.Context, cand models.ModerationCandidate) {
	if err := cand.Validate(); err != nil {
		log.Printf("moderation: skipping invalid candidate: %v", err)
		return
	}

	var result *models.ScanResult
	if cand.ImageURL != "" {
		result = s.classifier.ScanImage(ctx, cand.ImageURL)
	} else if labels := s.classifier.ScanTextDetailed(ctx, cand.Text); labels != nil {
		matched := filterByThreshold(labels, s.cfg.TextDetectThreshold)
		if len(matched) > 0 {
			result = &models.ScanResult{
				Reason:  strings.Join(formatLabels(matched), ", "),
				Preview: Preview(cand.Text),
			}
		}
	} else {
		result = s.scanner.Scan(cand.Text)
		if result != nil && !scoreSuffixRe.MatchString(result.Reason) {
			// Audit consistency: local-rule reasons carry a score suffix
			// like the classifier-produced ones.
			result.Reason += " (local rule 1.00)"
		}
	}

	if result == nil {
		return
	}
	s.record(cand, result.Reason)
}

// record inserts a pending queue entry and publishes the live-feed event.
// Failures must not affect the mutation that triggered the scan, so they are
// logged only.
func (s *Service) record(cand models.ModerationCandidate, reason string) {
	preview := cand.ImageURL
	if cand.Text != "" {
		preview = cand.Text
	}

	entry := &models.ModerationLogEntry{
		ID:              uuid.New(),
		UserID:          cand.UserID,
		ContentType:     cand.ContentType,
		RelatedEntityID: cand.RelatedEntityID,
		FlagReason:      reason,
		ContentPreview:  Preview(preview),
		Status:          models.ModerationStatusPending,
		CreatedAt:       time.Now(),
	}

	if err := s.recorder.Insert(entry); err != nil {
		log.Printf("moderation: failed to insert log entry: %v", err)
		return
	}

	if s.events != nil {
		event := models.ModerationEvent{Event: models.EventModerationFlagged, Entry: *entry}
		if err := s.events.PublishModerationEvent(event); err != nil {
			log.Printf("moderation: failed to publish event: %v", err)
		}
	}
}

func flagReason(details *models.BlockDetails) string {
	if len(details.Labels) == 0 || strings.HasSuffix(details.Reason, "(local fallback)") {
		return details.Reason
	}
	return details.Reason + ": " + strings.Join(details.Labels, ", ")
}

func humanContentType(ct models.ContentType) string {
	return strings.ReplaceAll(string(ct), "_", " ")
}
