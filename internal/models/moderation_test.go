package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestContentType_Valid(t *testing.T) {
	valid := []ContentType{
		ContentTypeUsername, ContentTypeProfileBio, ContentTypeJourneyTitle,
		ContentTypeJourneyDescription, ContentTypePostTitle,
		ContentTypePostContent, ContentTypePostImage,
	}
	for _, ct := range valid {
		if !ct.Valid() {
			t.Errorf("Expected %q to be valid", ct)
		}
	}

	if ContentType("comment").Valid() {
		t.Error("Expected unknown content type to be invalid")
	}
	if ContentType("").Valid() {
		t.Error("Expected empty content type to be invalid")
	}
}

func TestModerationStatus_ReviewStatus(t *testing.T) {
	tests := []struct {
		status ModerationStatus
		want   bool
	}{
		{ModerationStatusReviewed, true},
		{ModerationStatusDismissed, true},
		{ModerationStatusPending, false},
		{ModerationStatusActionTaken, false},
		{ModerationStatus("deleted"), false},
	}

	for _, tt := range tests {
		if got := tt.status.ReviewStatus(); got != tt.want {
			t.Errorf("ReviewStatus(%q): expected %v, got %v", tt.status, tt.want, got)
		}
	}
}

func TestModerationCandidate_Validate(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		candidate ModerationCandidate
		wantErr   bool
	}{
		{
			name:      "Valid text candidate",
			candidate: ModerationCandidate{UserID: userID, ContentType: ContentTypePostTitle, Text: "hello"},
			wantErr:   false,
		},
		{
			name:      "Valid image candidate",
			candidate: ModerationCandidate{UserID: userID, ContentType: ContentTypePostImage, ImageURL: "https://img.example.com/a.jpg"},
			wantErr:   false,
		},
		{
			name:      "Missing user",
			candidate: ModerationCandidate{ContentType: ContentTypePostTitle, Text: "hello"},
			wantErr:   true,
		},
		{
			name:      "Invalid content type",
			candidate: ModerationCandidate{UserID: userID, ContentType: "comment", Text: "hello"},
			wantErr:   true,
		},
		{
			name:      "No content",
			candidate: ModerationCandidate{UserID: userID, ContentType: ContentTypePostTitle},
			wantErr:   true,
		},
		{
			name:      "Both text and image",
			candidate: ModerationCandidate{UserID: userID, ContentType: ContentTypePostImage, Text: "hello", ImageURL: "https://img.example.com/a.jpg"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.candidate.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestModerationLogEntry_Validate(t *testing.T) {
	entry := ModerationLogEntry{
		UserID:      uuid.New(),
		ContentType: ContentTypePostContent,
		FlagReason:  "spam",
		Status:      ModerationStatusPending,
	}
	if err := entry.Validate(); err != nil {
		t.Errorf("Expected valid entry, got %v", err)
	}

	missingReason := entry
	missingReason.FlagReason = ""
	if err := missingReason.Validate(); err == nil {
		t.Error("Expected error for missing flag reason")
	}

	badStatus := entry
	badStatus.Status = "archived"
	if err := badStatus.Validate(); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestEnforcementAction_Valid(t *testing.T) {
	valid := []EnforcementAction{
		ActionBanUser, ActionDeleteContent, ActionRedactBio,
		ActionReplaceUsername, ActionDeleteAllContent,
	}
	for _, a := range valid {
		if !a.Valid() {
			t.Errorf("Expected %q to be valid", a)
		}
	}

	if EnforcementAction("shadow_ban").Valid() {
		t.Error("Expected unknown action to be invalid")
	}
}
