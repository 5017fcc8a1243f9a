package moderation

import (
	"strings"

	"github.com/waypost/backend/internal/models"
)

// ExtractText flattens a rich document into scan-ready plain text: every
// text leaf and every string-valued attr, joined with single spaces and
// whitespace-collapsed.
func ExtractText(doc models.RichDoc) string {
	var parts []string
	collectText(map[string]any(doc), &parts)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.Join(parts, " "), " "))
}

func collectText(node map[string]any, parts *[]string) {
	if node == nil {
		return
	}
	if text, ok := node["text"].(string); ok && text != "" {
		*parts = append(*parts, text)
	}
	if attrs, ok := node["attrs"].(map[string]any); ok {
		for _, v := range attrs {
			if s, ok := v.(string); ok && s != "" {
				*parts = append(*parts, s)
			}
		}
	}
	if content, ok := node["content"].([]any); ok {
		for _, child := range content {
			if childNode, ok := child.(map[string]any); ok {
				collectText(childNode, parts)
			}
		}
	}
}

// ExtractImageURLs walks the document and returns the src of every image
// node that points at an absolute http(s) URL, de-duplicated in
// first-encountered order.
func ExtractImageURLs(doc models.RichDoc) []string {
	seen := make(map[string]struct{})
	urls := []string{}
	collectImageURLs(map[string]any(doc), seen, &urls)
	return urls
}

func collectImageURLs(node map[string]any, seen map[string]struct{}, urls *[]string) {
	if node == nil {
		return
	}
	if nodeType, ok := node["type"].(string); ok && nodeType == "image" {
		if attrs, ok := node["attrs"].(map[string]any); ok {
			if src, ok := attrs["src"].(string); ok && isAbsoluteHTTPURL(src) {
				if _, dup := seen[src]; !dup {
					seen[src] = struct{}{}
					*urls = append(*urls, src)
				}
			}
		}
	}
	if content, ok := node["content"].([]any); ok {
		for _, child := range content {
			if childNode, ok := child.(map[string]any); ok {
				collectImageURLs(childNode, seen, urls)
			}
		}
	}
}

func isAbsoluteHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
