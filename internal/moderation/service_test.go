package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/waypost/backend/internal/models"
)

type fakeRecorder struct {
	entries []*models.ModerationLogEntry
	err     error
}

func (f *fakeRecorder) Insert(entry *models.ModerationLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakePublisher struct {
	events []interface{}
}

func (f *fakePublisher) PublishModerationEvent(event interface{}) error {
	f.events = append(f.events, event)
	return nil
}

func newOfflineService(recorder Recorder, events EventPublisher) *Service {
	cfg := testModerationConfig("http://unused.invalid")
	cfg.APIKey = ""
	scanner := NewScanner(nil)
	classifier := NewClassifier(cfg)
	policy := NewPolicy(scanner, classifier, cfg)
	return NewService(policy, classifier, scanner, recorder, events, cfg)
}

func TestService_Enforce_LocalFallbackBlock(t *testing.T) {
	recorder := &fakeRecorder{}
	service := newOfflineService(recorder, nil)

	userID := uuid.New()
	block := service.Enforce(context.Background(), models.ModerationCandidate{
		UserID:      userID,
		ContentType: models.ContentTypePostTitle,
		Text:        "This looks like spam content",
	})
	if block == nil {
		t.Fatal("Expected a block response")
	}

	if !strings.Contains(block.Message, "spam (local fallback)") {
		t.Errorf("Expected fallback reason in message, got %q", block.Message)
	}
	if !strings.Contains(block.Message, "confidence 100%") {
		t.Errorf("Expected 100%% confidence in message, got %q", block.Message)
	}
	if !strings.Contains(block.Message, "post title") {
		t.Errorf("Expected humanized content type in message, got %q", block.Message)
	}

	if len(recorder.entries) != 1 {
		t.Fatalf("Expected 1 queue entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.Status != models.ModerationStatusPending {
		t.Errorf("Expected pending status, got %q", entry.Status)
	}
	if entry.UserID != userID {
		t.Errorf("Expected user %s, got %s", userID, entry.UserID)
	}
	if entry.FlagReason != "spam (local fallback)" {
		t.Errorf("Unexpected flag reason %q", entry.FlagReason)
	}
}

func TestService_Enforce_Clean(t *testing.T) {
	recorder := &fakeRecorder{}
	service := newOfflineService(recorder, nil)

	block := service.Enforce(context.Background(), models.ModerationCandidate{
		UserID:      uuid.New(),
		ContentType: models.ContentTypeJourneyTitle,
		Text:        "Cycling the coast in autumn",
	})
	if block != nil {
		t.Fatalf("Expected no block, got %+v", block)
	}
	if len(recorder.entries) != 0 {
		t.Errorf("Expected no queue entries, got %d", len(recorder.entries))
	}
}

func TestService_Enforce_FirstBlockWins(t *testing.T) {
	recorder := &fakeRecorder{}
	service := newOfflineService(recorder, nil)

	userID := uuid.New()
	block := service.Enforce(context.Background(),
		models.ModerationCandidate{UserID: userID, ContentType: models.ContentTypePostTitle, Text: "spam title"},
		models.ModerationCandidate{UserID: userID, ContentType: models.ContentTypePostContent, Text: "violence in the body too"},
	)
	if block == nil {
		t.Fatal("Expected a block response")
	}
	if block.Details.ContentType != models.ContentTypePostTitle {
		t.Errorf("Expected the title to block first, got %q", block.Details.ContentType)
	}
	if len(recorder.entries) != 1 {
		t.Errorf("Expected a single entry for the first block, got %d", len(recorder.entries))
	}
}

func TestService_Enforce_SkipsEmptyCandidates(t *testing.T) {
	recorder := &fakeRecorder{}
	service := newOfflineService(recorder, nil)

	block := service.Enforce(context.Background(),
		models.ModerationCandidate{UserID: uuid.New(), ContentType: models.ContentTypeProfileBio, Text: ""},
	)
	if block != nil {
		t.Fatalf("Expected empty candidate to be skipped, got %+v", block)
	}
}

func TestService_LogCandidate_LocalRuleSuffix(t *testing.T) {
	recorder := &fakeRecorder{}
	events := &fakePublisher{}
	service := newOfflineService(recorder, events)

	service.LogCandidate(context.Background(), models.ModerationCandidate{
		UserID:      uuid.New(),
		ContentType: models.ContentTypePostContent,
		Text:        "an obvious scam pitch",
	})

	if len(recorder.entries) != 1 {
		t.Fatalf("Expected 1 queue entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.FlagReason != "scam or fraud (local rule 1.00)" {
		t.Errorf("Unexpected flag reason %q", entry.FlagReason)
	}
	if entry.ContentPreview != "an obvious scam pitch" {
		t.Errorf("Unexpected preview %q", entry.ContentPreview)
	}

	if len(events.events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(events.events))
	}
	event, ok := events.events[0].(models.ModerationEvent)
	if !ok {
		t.Fatalf("Unexpected event type %T", events.events[0])
	}
	if event.Event != models.EventModerationFlagged {
		t.Errorf("Unexpected event name %q", event.Event)
	}
}

func TestService_LogCandidate_Clean(t *testing.T) {
	recorder := &fakeRecorder{}
	service := newOfflineService(recorder, nil)

	service.LogCandidate(context.Background(), models.ModerationCandidate{
		UserID:      uuid.New(),
		ContentType: models.ContentTypePostContent,
		Text:        "a clean trip report",
	})

	if len(recorder.entries) != 0 {
		t.Errorf("Expected no queue entries, got %d", len(recorder.entries))
	}
}

func TestService_LogCandidate_InsertFailureSwallowed(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("db down")}
	events := &fakePublisher{}
	service := newOfflineService(recorder, events)

	// Must not panic or surface the error.
	service.LogCandidate(context.Background(), models.ModerationCandidate{
		UserID:      uuid.New(),
		ContentType: models.ContentTypePostContent,
		Text:        "more spam here",
	})

	if len(events.events) != 0 {
		t.Errorf("Expected no events after a failed insert, got %d", len(events.events))
	}
}

func TestService_LogCandidate_InvalidCandidate(t *testing.T) {
	recorder := &fakeRecorder{}
	service := newOfflineService(recorder, nil)

	// Both text and image set is invalid and must be skipped.
	service.LogCandidate(context.Background(), models.ModerationCandidate{
		UserID:      uuid.New(),
		ContentType: models.ContentTypePostContent,
		Text:        "spam",
		ImageURL:    "https://img.example.com/a.jpg",
	})

	if len(recorder.entries) != 0 {
		t.Errorf("Expected invalid candidate to be skipped, got %d entries", len(recorder.entries))
	}
}
