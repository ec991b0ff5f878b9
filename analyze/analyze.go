// Package analyze turns raw extraction signal into a final
// title/description/category/summary/tags verdict. Two strategies
// implement the same capability: a Gemini-backed analyzer and a
// deterministic keyword analyzer that needs no external dependency.
// The strategy is chosen once at startup; Gemini degrades to the
// keyword analyzer per call when its response is unusable.
package analyze

import (
	"context"
	"strings"

	"github.com/zombar/linksaver/models"
)

// Method labels attached to replies and metrics.
const (
	MethodGemini  = "Gemini AI"
	MethodKeyword = "Keyword match"
)

// Analyzer produces an AnalysisResult for a URL from whatever signal
// extraction managed to gather. Implementations never return a result
// with an invalid category.
type Analyzer interface {
	Analyze(ctx context.Context, targetURL string, platform models.Platform, scrapedTitle, scrapedDesc string) (*models.AnalysisResult, error)
	Method() string
}

// Config contains analyzer configuration.
type Config struct {
	GeminiAPIKey string // empty selects the keyword analyzer
	GeminiModel  string
}

// DefaultConfig returns default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		GeminiModel: "gemini-1.5-flash",
	}
}

// New selects the analysis strategy for the process lifetime: Gemini
// when an API key is configured, the keyword analyzer otherwise.
func New(ctx context.Context, config Config) (Analyzer, error) {
	if config.GeminiAPIKey == "" {
		return NewKeyword(), nil
	}
	return NewGemini(ctx, config.GeminiAPIKey, config.GeminiModel)
}

// normalizeTags lower-cases and de-duplicates tags, forces the category
// to the front, and caps the list at five entries.
func normalizeTags(tags []string, category models.Category) []string {
	out := []string{string(category)}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if contains(out, tag) {
			continue
		}
		if len(out) == 5 {
			break
		}
		out = append(out, tag)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
