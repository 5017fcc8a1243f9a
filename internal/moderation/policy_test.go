package moderation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/waypost/backend/internal/models"
)

func newTestPolicy(baseURL string, apiKey string) *Policy {
	cfg := testModerationConfig(baseURL)
	cfg.APIKey = apiKey
	return NewPolicy(NewScanner(nil), NewClassifier(cfg), cfg)
}

func labelServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
}

func TestPolicy_TextBlockDetails_LocalFallback(t *testing.T) {
	policy := newTestPolicy("http://unused.invalid", "")

	details := policy.TextBlockDetails(context.Background(), models.ContentTypePostTitle, "total spam offer")
	if details == nil {
		t.Fatal("Expected a block from the local fallback")
	}
	if details.Reason != "spam (local fallback)" {
		t.Errorf("Unexpected reason %q", details.Reason)
	}
	if details.Confidence != 1.0 || details.Threshold != 1.0 {
		t.Errorf("Expected fallback confidence and threshold 1.0, got %.2f / %.2f", details.Confidence, details.Threshold)
	}
	if details.Source != "text" {
		t.Errorf("Expected source text, got %q", details.Source)
	}
}

func TestPolicy_TextBlockDetails_UnavailableAndClean(t *testing.T) {
	policy := newTestPolicy("http://unused.invalid", "")

	details := policy.TextBlockDetails(context.Background(), models.ContentTypePostContent, "a quiet day on the trail")
	if details != nil {
		t.Errorf("Expected nil, got %+v", details)
	}
}

func TestPolicy_TextBlockDetails_RemoteBlock(t *testing.T) {
	server := labelServer(t, `[{"label":"toxic","score":0.95},{"label":"neutral","score":0.05}]`)
	defer server.Close()

	policy := newTestPolicy(server.URL, "test-key")

	details := policy.TextBlockDetails(context.Background(), models.ContentTypePostContent, "some text")
	if details == nil {
		t.Fatal("Expected a block")
	}
	if details.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %.2f", details.Confidence)
	}
	if details.Threshold != 0.9 {
		t.Errorf("Expected general threshold 0.9, got %.2f", details.Threshold)
	}
}

func TestPolicy_TextBlockDetails_BelowThreshold(t *testing.T) {
	server := labelServer(t, `[{"label":"toxic","score":0.85}]`)
	defer server.Close()

	policy := newTestPolicy(server.URL, "test-key")

	if details := policy.TextBlockDetails(context.Background(), models.ContentTypePostContent, "some text"); details != nil {
		t.Errorf("Expected nil below the general threshold, got %+v", details)
	}
}

func TestPolicy_TextBlockDetails_SevereThreshold(t *testing.T) {
	// 0.85 clears the severe threshold (0.8) but not the general one (0.9).
	server := labelServer(t, `[{"label":"severe_toxic","score":0.85}]`)
	defer server.Close()

	policy := newTestPolicy(server.URL, "test-key")

	details := policy.TextBlockDetails(context.Background(), models.ContentTypePostContent, "some text")
	if details == nil {
		t.Fatal("Expected a block at the severe threshold")
	}
	if details.Threshold != 0.8 {
		t.Errorf("Expected severe threshold 0.8, got %.2f", details.Threshold)
	}
}

func TestPolicy_TextBlockDetails_RemoteOverridesLocal(t *testing.T) {
	// Remote is available and clean: a local rule hit must not block here.
	// The passive logging path picks it up instead.
	server := labelServer(t, `[{"label":"neutral","score":0.99}]`)
	defer server.Close()

	policy := newTestPolicy(server.URL, "test-key")

	if details := policy.TextBlockDetails(context.Background(), models.ContentTypePostTitle, "harmless spam mention"); details != nil {
		t.Errorf("Expected nil when remote is clean, got %+v", details)
	}
}

func TestPolicy_ImageBlockDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pic.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte{0xFF, 0xD8, 0xFF})
	})
	mux.HandleFunc("/image-model", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"label":"nsfw","score":0.97}]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	policy := newTestPolicy(server.URL, "test-key")

	details := policy.ImageBlockDetails(context.Background(), models.ContentTypePostImage, server.URL+"/pic.jpg")
	if details == nil {
		t.Fatal("Expected a block for nsfw image")
	}
	if details.Source != "image" {
		t.Errorf("Expected source image, got %q", details.Source)
	}
	if details.Threshold != 0.9 {
		t.Errorf("Expected image threshold 0.9, got %.2f", details.Threshold)
	}
}

func TestPolicy_ImageBlockDetails_NoFallback(t *testing.T) {
	policy := newTestPolicy("http://unused.invalid", "")

	if details := policy.ImageBlockDetails(context.Background(), models.ContentTypePostImage, "https://img.example.com/a.jpg"); details != nil {
		t.Errorf("Expected nil without classifier, got %+v", details)
	}
}
