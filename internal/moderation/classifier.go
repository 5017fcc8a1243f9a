package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/waypost/backend/config"
	"github.com/waypost/backend/internal/models"
)

// Unsafe-term vocabularies. A label counts as unsafe when its normalized form
// contains any term for the relevant domain.
var (
	textUnsafeTerms = []string{
		"toxic", "severe toxic", "obscene", "insult", "threat",
		"identity hate", "identity attack", "hate", "harass",
		"violence", "abusive", "sexual explicit",
	}
	imageUnsafeTerms = []string{
		"nsfw", "explicit", "nudity", "nude", "porn", "sexual", "unsafe",
	}
)

// Classifier calls the remote multi-label classification service. Every
// failure mode (missing credential, transport error, non-2xx, non-image
// fetch) resolves to a nil slice, which callers must treat as "unavailable",
// not "clean". A malformed-but-delivered payload degrades to an empty,
// non-nil slice instead.
type Classifier struct {
	cfg    config.ModerationConfig
	client *resty.Client
}

// NewClassifier creates a classifier adapter from the moderation config.
func NewClassifier(cfg config.ModerationConfig) *Classifier {
	client := resty.New().
		SetTimeout(cfg.HTTPTimeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &Classifier{cfg: cfg, client: client}
}

// Available reports whether a service credential is configured.
func (c *Classifier) Available() bool {
	return c.cfg.APIKey != ""
}

// ScanTextDetailed classifies text and returns every label with its unsafe
// flag set. Returns nil when the service is unavailable.
func (c *Classifier) ScanTextDetailed(ctx context.Context, text string) []models.LabelScore {
	if !c.Available() || strings.TrimSpace(text) == "" {
		return nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"inputs": text}).
		Post(c.modelEndpoint(c.cfg.TextModel))
	if err != nil {
		log.Printf("moderation: text classifier request failed: %v", err)
		return nil
	}
	if resp.IsError() {
		log.Printf("moderation: text classifier returned status %d", resp.StatusCode())
		return nil
	}

	return markUnsafe(parseLabelPayload(resp.Body()), textUnsafeTerms)
}

// ScanImageDetailed fetches the image and classifies its bytes. Returns nil
// when the service is unavailable, the fetch fails, or the resource is not an
// image (no classification call is spent on broken or non-image URLs).
func (c *Classifier) ScanImageDetailed(ctx context.Context, imageURL string) []models.LabelScore {
	if !c.Available() || imageURL == "" {
		return nil
	}

	img, err := c.client.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		log.Printf("moderation: image fetch failed: %v", err)
		return nil
	}
	contentType := img.Header().Get("Content-Type")
	if img.IsError() || !strings.HasPrefix(contentType, "image/") {
		return nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(img.Body()).
		Post(c.modelEndpoint(c.cfg.ImageModel))
	if err != nil {
		log.Printf("moderation: image classifier request failed: %v", err)
		return nil
	}
	if resp.IsError() {
		log.Printf("moderation: image classifier returned status %d", resp.StatusCode())
		return nil
	}

	return markUnsafe(parseLabelPayload(resp.Body()), imageUnsafeTerms)
}

// ScanText is the convenience wrapper: unsafe labels at or above the text
// detection threshold produce a scan result, anything else nil.
func (c *Classifier) ScanText(ctx context.Context, text string) *models.ScanResult {
	labels := c.ScanTextDetailed(ctx, text)
	matched := filterByThreshold(labels, c.cfg.TextDetectThreshold)
	if len(matched) == 0 {
		return nil
	}
	return &models.ScanResult{
		Reason:  strings.Join(formatLabels(matched), ", "),
		Preview: Preview(text),
	}
}

// ScanImage is the image counterpart of ScanText.
func (c *Classifier) ScanImage(ctx context.Context, imageURL string) *models.ScanResult {
	labels := c.ScanImageDetailed(ctx, imageURL)
	matched := filterByThreshold(labels, c.cfg.ImageDetectThreshold)
	if len(matched) == 0 {
		return nil
	}
	return &models.ScanResult{
		Reason:  strings.Join(formatLabels(matched), ", "),
		Preview: imageURL,
	}
}

func (c *Classifier) modelEndpoint(model string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + model
}

// parseLabelPayload normalizes the classifier response, which arrives either
// as a flat array of {label, score} pairs or singly nested ([[...]]). Any
// unrecognized shape degrades to an empty list; this function never fails.
func parseLabelPayload(body []byte) []models.LabelScore {
	var flat []models.LabelScore
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 && flat[0].Label != "" {
		return flat
	}

	var nested [][]models.LabelScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		return nested[0]
	}

	return []models.LabelScore{}
}

// NormalizeLabel lower-cases a label and replaces separators with spaces.
func NormalizeLabel(label string) string {
	lower := strings.ToLower(label)
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '/', '.':
			return ' '
		}
		return r
	}, lower)
}

func markUnsafe(labels []models.LabelScore, vocab []string) []models.LabelScore {
	for i := range labels {
		normalized := NormalizeLabel(labels[i].Label)
		for _, term := range vocab {
			if strings.Contains(normalized, term) {
				labels[i].Unsafe = true
				break
			}
		}
	}
	return labels
}

// filterByThreshold keeps unsafe labels scoring at or above threshold,
// sorted descending by score.
func filterByThreshold(labels []models.LabelScore, threshold float64) []models.LabelScore {
	matched := make([]models.LabelScore, 0, len(labels))
	for _, l := range labels {
		if l.Unsafe && l.Score >= threshold {
			matched = append(matched, l)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Score > matched[j].Score })
	return matched
}

func formatLabels(labels []models.LabelScore) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, fmt.Sprintf("%s (%.2f)", l.Label, l.Score))
	}
	return out
}
