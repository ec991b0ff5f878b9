package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/zombar/linksaver/models"
)

const geminiTimeout = 30 * time.Second

// Gemini asks a Gemini model for a content profile. Every failure
// mode, from transport errors to unparseable responses, degrades to
// the keyword analyzer so analysis itself never fails.
type Gemini struct {
	client   *genai.Client
	model    string
	fallback *Keyword
}

// NewGemini creates a Gemini-backed analyzer.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{
		client:   client,
		model:    model,
		fallback: NewKeyword(),
	}, nil
}

// Method returns the label attached to replies produced by this analyzer.
func (g *Gemini) Method() string {
	return MethodGemini
}

// Analyze sends URL context to Gemini and parses the JSON profile it
// returns. Unusable responses fall back to keyword analysis.
func (g *Gemini) Analyze(ctx context.Context, targetURL string, platform models.Platform, scrapedTitle, scrapedDesc string) (*models.AnalysisResult, error) {
	prompt := buildPrompt(targetURL, platform, scrapedTitle, scrapedDesc)

	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		slog.Warn("gemini request failed, using keyword fallback", "url", targetURL, "error", err)
		return g.fallback.Analyze(ctx, targetURL, platform, scrapedTitle, scrapedDesc)
	}

	text := result.Text()
	if text == "" {
		slog.Warn("gemini returned empty response, using keyword fallback", "url", targetURL)
		return g.fallback.Analyze(ctx, targetURL, platform, scrapedTitle, scrapedDesc)
	}

	analysis, err := parseGeminiResponse(text)
	if err != nil {
		slog.Warn("gemini response unparseable, using keyword fallback", "url", targetURL, "error", err)
		return g.fallback.Analyze(ctx, targetURL, platform, scrapedTitle, scrapedDesc)
	}
	return analysis, nil
}

// buildPrompt assembles the analysis prompt. Placeholder titles and
// self-generated descriptions are withheld so the model works from
// real signal only.
func buildPrompt(targetURL string, platform models.Platform, scrapedTitle, scrapedDesc string) string {
	parts := []string{
		fmt.Sprintf("URL: %s", targetURL),
		fmt.Sprintf("Platform: %s", platform),
	}
	if usableTitle(scrapedTitle) {
		parts = append(parts, fmt.Sprintf("Scraped title: %s", scrapedTitle))
	}
	if scrapedDesc != "" && !strings.Contains(scrapedDesc, "Saved from") {
		parts = append(parts, fmt.Sprintf("Scraped description: %s", truncate(scrapedDesc, 300)))
	}

	return fmt.Sprintf(`You are analyzing a saved social media link. Based on URL and context, return a JSON profile.

%s

Even if you cannot access the URL, infer from:
- The platform type (Instagram/YouTube/Twitter/Facebook)
- Any keywords, hashtags or readable words in URL path
- Common content patterns on that platform

IMPORTANT: Never return generic titles like "Instagram Post" or "YouTube Video".
Be specific about what this content likely covers based on any clues in the URL.

Respond ONLY with valid JSON (no markdown, no code blocks):
{
  "title": "Specific descriptive title inferred from URL and platform",
  "description": "2-3 sentences about what this content likely covers",
  "category": "exactly one of: fitness, coding, food, travel, design, fashion, business, education, entertainment, other",
  "ai_summary": "One punchy sentence about value of this content",
  "tags": ["tag1", "tag2", "tag3", "tag4"]
}`, strings.Join(parts, "\n"))
}

// parseGeminiResponse extracts the JSON object from a model response,
// tolerating markdown code fences, and validates required fields. An
// unknown category coerces to other rather than failing.
func parseGeminiResponse(text string) (*models.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "```") {
		segments := strings.Split(text, "```")
		if len(segments) < 2 {
			return nil, fmt.Errorf("unterminated code fence in response")
		}
		text = strings.TrimSpace(strings.TrimPrefix(segments[1], "json"))
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var parsed struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		AISummary   string   `json:"ai_summary"`
		Tags        []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response JSON: %w", err)
	}
	if parsed.Title == "" {
		return nil, fmt.Errorf("response missing title")
	}
	if parsed.AISummary == "" {
		return nil, fmt.Errorf("response missing ai_summary")
	}

	category, ok := models.ParseCategory(strings.ToLower(strings.TrimSpace(parsed.Category)))
	if !ok {
		category = models.CategoryOther
	}

	return &models.AnalysisResult{
		Title:       parsed.Title,
		Description: parsed.Description,
		Category:    category,
		AISummary:   parsed.AISummary,
		Tags:        normalizeTags(parsed.Tags, category),
	}, nil
}
