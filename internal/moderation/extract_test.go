package moderation

import (
	"reflect"
	"testing"

	"github.com/waypost/backend/internal/models"
)

func textNode(text string) map[string]any {
	return map[string]any{"type": "text", "text": text}
}

func imageNode(src string) map[string]any {
	return map[string]any{"type": "image", "attrs": map[string]any{"src": src}}
}

func TestExtractText(t *testing.T) {
	doc := models.RichDoc{
		"type": "doc",
		"content": []any{
			map[string]any{
				"type":    "paragraph",
				"content": []any{textNode("First  line"), textNode("second line")},
			},
			map[string]any{
				"type":  "link",
				"attrs": map[string]any{"title": "trail map"},
			},
		},
	}

	got := ExtractText(doc)
	if got != "First line second line trail map" {
		t.Errorf("Unexpected flattened text: %q", got)
	}
}

func TestExtractText_Empty(t *testing.T) {
	if got := ExtractText(models.RichDoc{"type": "doc"}); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
	if got := ExtractText(nil); got != "" {
		t.Errorf("Expected empty string for nil doc, got %q", got)
	}
}

func TestExtractImageURLs_DedupeOrder(t *testing.T) {
	doc := models.RichDoc{
		"type": "doc",
		"content": []any{
			imageNode("https://img.example.com/a.jpg"),
			map[string]any{
				"type": "figure",
				"content": []any{
					imageNode("https://img.example.com/a.jpg"),
				},
			},
			imageNode("https://img.example.com/b.jpg"),
		},
	}

	got := ExtractImageURLs(doc)
	want := []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestExtractImageURLs_SkipsNonAbsolute(t *testing.T) {
	doc := models.RichDoc{
		"type": "doc",
		"content": []any{
			imageNode("/uploads/local.png"),
			imageNode("data:image/png;base64,AAAA"),
			imageNode("ftp://img.example.com/c.jpg"),
			imageNode("http://img.example.com/ok.jpg"),
		},
	}

	got := ExtractImageURLs(doc)
	want := []string{"http://img.example.com/ok.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestExtractImageURLs_NoImages(t *testing.T) {
	doc := models.RichDoc{
		"type":    "doc",
		"content": []any{textNode("no pictures today")},
	}

	if got := ExtractImageURLs(doc); len(got) != 0 {
		t.Errorf("Expected no URLs, got %v", got)
	}
}
