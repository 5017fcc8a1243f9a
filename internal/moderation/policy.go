package moderation

import (
	"context"
	"log"
	"strings"

	"github.com/waypost/backend/config"
	"github.com/waypost/backend/internal/models"
)

// severeTerms mark classifier categories blocked at the stricter (lower)
// severe threshold: severe harms warrant blocking at lower confidence.
var severeTerms = []string{"severe", "identity", "threat", "violence"}

// Policy combines the local scanner and the remote classifier into a
// block-or-allow decision under independently configured thresholds.
type Policy struct {
	scanner    *Scanner
	classifier *Classifier
	cfg        config.ModerationConfig
}

// NewPolicy creates a policy engine.
func NewPolicy(scanner *Scanner, classifier *Classifier, cfg config.ModerationConfig) *Policy {
	return &Policy{scanner: scanner, classifier: classifier, cfg: cfg}
}

// TextBlockDetails decides whether text must be blocked. Nil means allow.
//
// When the remote classifier is unavailable, a local rule hit becomes a
// synthetic maximal-confidence block ("local fallback"): losing the remote
// signal must not silently relax moderation.
func (p *Policy) TextBlockDetails(ctx context.Context, contentType models.ContentType, text string) *models.BlockDetails {
	local := p.scanner.Scan(text)
	labels := p.classifier.ScanTextDetailed(ctx, text)

	if labels == nil {
		if local == nil {
			p.debugDecision(contentType, "text", nil)
			return nil
		}
		fallback := config.Clamp01(p.cfg.LocalFallbackConfidence)
		details := &models.BlockDetails{
			ContentType: contentType,
			Source:      "text",
			Reason:      local.Reason + " (local fallback)",
			Confidence:  fallback,
			Threshold:   fallback,
			Labels:      []string{local.Reason},
		}
		p.debugDecision(contentType, "text", details)
		return details
	}

	type match struct {
		label     models.LabelScore
		threshold float64
	}
	var matched []match
	for _, l := range labels {
		if !l.Unsafe {
			continue
		}
		threshold := p.textThresholdFor(l.Label)
		if l.Score >= threshold {
			matched = append(matched, match{label: l, threshold: threshold})
		}
	}
	if len(matched) == 0 {
		p.debugDecision(contentType, "text", nil)
		return nil
	}

	top := matched[0]
	scores := make([]models.LabelScore, 0, len(matched))
	for _, m := range matched {
		if m.label.Score > top.label.Score {
			top = m
		}
		scores = append(scores, m.label)
	}

	details := &models.BlockDetails{
		ContentType: contentType,
		Source:      "text",
		Reason:      "unsafe content detected",
		Confidence:  top.label.Score,
		Threshold:   top.threshold,
		Labels:      formatLabels(sortedByScore(scores)),
	}
	p.debugDecision(contentType, "text", details)
	return details
}

// ImageBlockDetails decides whether an image must be blocked. Images have a
// single threshold and no local fallback: the lexical scanner is text-only,
// so an unavailable classifier means no image verdict at all.
func (p *Policy) ImageBlockDetails(ctx context.Context, contentType models.ContentType, imageURL string) *models.BlockDetails {
	labels := p.classifier.ScanImageDetailed(ctx, imageURL)
	matched := filterByThreshold(labels, p.cfg.ImageBlockThreshold)
	if len(matched) == 0 {
		p.debugDecision(contentType, "image", nil)
		return nil
	}

	details := &models.BlockDetails{
		ContentType: contentType,
		Source:      "image",
		Reason:      "unsafe image detected",
		Confidence:  matched[0].Score,
		Threshold:   p.cfg.ImageBlockThreshold,
		Labels:      formatLabels(matched),
	}
	p.debugDecision(contentType, "image", details)
	return details
}

// textThresholdFor returns the block threshold applicable to a label: severe
// categories use the stricter severe threshold, everything else the general
// one.
func (p *Policy) textThresholdFor(label string) float64 {
	normalized := NormalizeLabel(label)
	for _, term := range severeTerms {
		if strings.Contains(normalized, term) {
			return p.cfg.SevereBlockThreshold
		}
	}
	return p.cfg.TextBlockThreshold
}

func sortedByScore(labels []models.LabelScore) []models.LabelScore {
	// filterByThreshold sorts descending; reuse it with a zero threshold on
	// already-unsafe labels.
	return filterByThreshold(labels, 0)
}

func (p *Policy) debugDecision(contentType models.ContentType, source string, details *models.BlockDetails) {
	if !p.cfg.Debug {
		return
	}
	if details == nil {
		log.Printf("moderation decision: content_type=%s source=%s blocked=false", contentType, source)
		return
	}
	log.Printf("moderation decision: content_type=%s source=%s blocked=true confidence=%.2f threshold=%.2f",
		contentType, source, details.Confidence, details.Threshold)
}
