package moderation

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/waypost/backend/internal/models"
)

// localRule pairs a compiled pattern with the human-readable reason reported
// when it matches. Rules are evaluated in order; the first hit wins.
type localRule struct {
	pattern *regexp.Regexp
	reason  string
}

var localRules = []localRule{
	{regexp.MustCompile(`\bspam\b`), "spam"},
	{regexp.MustCompile(`\b(scam|fraud)\b`), "scam or fraud"},
	{regexp.MustCompile(`\b(hate|racist|racism|racial slur|white supremacy|white supremacist|ethnic cleansing)\b`), "hate speech"},
	{regexp.MustCompile(`\bviolence\b`), "violence"},
	{regexp.MustCompile(`\babuse\b`), "abusive language"},
}

// stripMarks decomposes via NFKD and removes combining marks, so accented
// evasions ("spàm") still hit the word-boundary rules.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Scanner is the local lexical detector: deterministic, offline, no I/O.
// It always runs regardless of remote classifier availability.
type Scanner struct {
	extraKeywords []string
}

// NewScanner creates a scanner. extraKeywords extends the built-in rule set;
// terms are expected lower-cased with len >= 2 (config.Load guarantees this).
func NewScanner(extraKeywords []string) *Scanner {
	return &Scanner{extraKeywords: extraKeywords}
}

// Scan tests text against the built-in rules and the extra keyword list.
// It returns nil for blank input and when nothing matches.
func (s *Scanner) Scan(text string) *models.ScanResult {
	normalized := NormalizeText(text)
	if normalized == "" {
		return nil
	}

	lower := strings.ToLower(normalized)
	for _, rule := range localRules {
		if rule.pattern.MatchString(lower) {
			return &models.ScanResult{
				Reason:  rule.reason,
				Preview: Preview(text),
			}
		}
	}

	for _, kw := range s.extraKeywords {
		if strings.Contains(lower, kw) {
			return &models.ScanResult{
				Reason:  "policy keyword match",
				Preview: Preview(text),
			}
		}
	}

	return nil
}

// NormalizeText applies NFKD decomposition, strips diacritics, collapses
// whitespace and trims.
func NormalizeText(text string) string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		stripped = text
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(stripped, " "))
}
