package moderation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestScanner_Scan(t *testing.T) {
	scanner := NewScanner(nil)

	tests := []struct {
		name       string
		text       string
		wantReason string
	}{
		{
			name:       "Spam keyword",
			text:       "This looks like spam content",
			wantReason: "spam",
		},
		{
			name:       "Scam keyword",
			text:       "a classic scam setup",
			wantReason: "scam or fraud",
		},
		{
			name:       "Fraud keyword",
			text:       "obvious fraud attempt",
			wantReason: "scam or fraud",
		},
		{
			name:       "Racist slur category",
			text:       "some racist remark",
			wantReason: "hate speech",
		},
		{
			name:       "Violence keyword",
			text:       "calls for violence here",
			wantReason: "violence",
		},
		{
			name:       "Abuse keyword",
			text:       "nothing but abuse",
			wantReason: "abusive language",
		},
		{
			name:       "Uppercase input",
			text:       "SPAM SPAM SPAM",
			wantReason: "spam",
		},
		{
			name:       "Accented evasion",
			text:       "buy my spàm offer",
			wantReason: "spam",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scanner.Scan(tt.text)
			if result == nil {
				t.Fatal("Expected a scan result, got nil")
			}
			if result.Reason != tt.wantReason {
				t.Errorf("Expected reason %q, got %q", tt.wantReason, result.Reason)
			}
			if result.Preview == "" {
				t.Error("Expected a non-empty preview")
			}
		})
	}
}

func TestScanner_Scan_Clean(t *testing.T) {
	scanner := NewScanner(nil)

	tests := []struct {
		name string
		text string
	}{
		{"Clean text", "A lovely morning hike through the valley"},
		{"Empty input", ""},
		{"Whitespace only", "   \n\t  "},
		{"Substring does not match word rule", "spambots is one word here: spamming"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := scanner.Scan(tt.text); result != nil {
				t.Errorf("Expected nil, got reason %q", result.Reason)
			}
		})
	}
}

func TestScanner_Scan_ExtraKeywords(t *testing.T) {
	scanner := NewScanner([]string{"crypto pump"})

	result := scanner.Scan("join our CRYPTO PUMP group today")
	if result == nil {
		t.Fatal("Expected a scan result for extra keyword")
	}
	if result.Reason != "policy keyword match" {
		t.Errorf("Expected reason %q, got %q", "policy keyword match", result.Reason)
	}

	if result := scanner.Scan("plain crypto talk"); result != nil {
		t.Errorf("Expected nil for partial keyword, got %q", result.Reason)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Diacritics stripped", "spàm céntral", "spam central"},
		{"Whitespace collapsed", "  a \n\t b  ", "a b"},
		{"Plain passthrough", "hello world", "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPreview_Short(t *testing.T) {
	got := Preview("  short   text \n here ")
	if got != "short text here" {
		t.Errorf("Expected collapsed preview, got %q", got)
	}
}

func TestPreview_Truncates(t *testing.T) {
	long := strings.Repeat("lorem ipsum ", 40)

	got := Preview(long)
	if utf8.RuneCountInString(got) != maxPreviewRunes {
		t.Errorf("Expected %d runes, got %d", maxPreviewRunes, utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}
}

func TestPreview_Idempotent(t *testing.T) {
	long := strings.Repeat("wandering through the old town ", 30)

	once := Preview(long)
	twice := Preview(once)
	if once != twice {
		t.Errorf("Expected preview to be stable, got %q then %q", once, twice)
	}
}
