package analyze

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zombar/linksaver/models"
)

var urlWordPattern = regexp.MustCompile(`[a-zA-Z]{4,}`)

// urlStopWords are scheme, host and path noise that never make a useful
// title word.
var urlStopWords = map[string]struct{}{
	"https": {}, "http": {}, "www": {},
	"instagram": {}, "youtube": {}, "twitter": {}, "facebook": {},
	"reel": {}, "watch": {}, "post": {}, "status": {},
	"com": {}, "net": {}, "org": {},
}

// categoryKeywords is scanned in declaration order. On a score tie the
// earlier entry wins, so ordering is part of the behavior.
var categoryKeywords = []struct {
	category models.Category
	words    []string
}{
	{models.CategoryFitness, []string{"workout", "gym", "fitness", "exercise", "yoga", "training", "health", "cardio", "muscle"}},
	{models.CategoryCoding, []string{"code", "programming", "developer", "software", "tech", "python", "javascript", "coding", "tutorial"}},
	{models.CategoryFood, []string{"food", "recipe", "cooking", "restaurant", "meal", "dinner", "lunch", "breakfast", "chef"}},
	{models.CategoryTravel, []string{"travel", "trip", "vacation", "destination", "hotel", "beach", "mountain", "city", "tour"}},
	{models.CategoryDesign, []string{"design", "art", "creative", "architecture", "graphic", "aesthetic", "ui", "ux"}},
	{models.CategoryFashion, []string{"fashion", "style", "outfit", "clothing", "dress", "trend", "wear", "ootd"}},
	{models.CategoryBusiness, []string{"business", "entrepreneur", "startup", "marketing", "finance", "money", "invest"}},
	{models.CategoryEducation, []string{"learn", "tutorial", "education", "course", "study", "knowledge", "skill", "lesson"}},
	{models.CategoryEntertainment, []string{"fun", "entertainment", "movie", "music", "game", "funny", "meme", "comedy"}},
}

// Keyword is the deterministic analyzer. It never calls out over the
// network and never fails, which makes it the terminal fallback for
// every analysis path.
type Keyword struct {
	titleCaser cases.Caser
}

// NewKeyword creates a keyword analyzer.
func NewKeyword() *Keyword {
	return &Keyword{titleCaser: cases.Title(language.English)}
}

// Method returns the label attached to replies produced by this analyzer.
func (k *Keyword) Method() string {
	return MethodKeyword
}

// Analyze scores the combined title, description and URL text against
// the category keyword lists and assembles a deterministic result.
func (k *Keyword) Analyze(_ context.Context, targetURL string, platform models.Platform, scrapedTitle, scrapedDesc string) (*models.AnalysisResult, error) {
	text := strings.ToLower(scrapedTitle + " " + scrapedDesc + " " + targetURL)

	title := scrapedTitle
	if !usableTitle(title) {
		title = k.titleFromURL(targetURL, platform)
	}

	category := models.CategoryOther
	bestScore := 0
	matched := []string{}
	for _, entry := range categoryKeywords {
		score := 0
		var hits []string
		for _, word := range entry.words {
			if strings.Contains(text, word) {
				score++
				hits = append(hits, word)
			}
		}
		if score > bestScore {
			category = entry.category
			bestScore = score
			matched = hits
		}
	}

	description := scrapedDesc
	if description == "" {
		description = fmt.Sprintf("Saved from %s", platform)
	}

	tags := []string{string(platform)}
	if len(matched) > 3 {
		matched = matched[:3]
	}
	tags = append(tags, matched...)

	return &models.AnalysisResult{
		Title:       title,
		Description: description,
		Category:    category,
		AISummary:   fmt.Sprintf("%s - saved from %s", truncate(title, 60), platform),
		Tags:        normalizeTags(tags, category),
	}, nil
}

// titleFromURL derives a title from readable words in the URL path,
// skipping scheme and host noise.
func (k *Keyword) titleFromURL(targetURL string, platform models.Platform) string {
	var meaningful []string
	for _, word := range urlWordPattern.FindAllString(targetURL, -1) {
		if _, skip := urlStopWords[strings.ToLower(word)]; skip {
			continue
		}
		meaningful = append(meaningful, word)
		if len(meaningful) == 5 {
			break
		}
	}
	if len(meaningful) == 0 {
		return fmt.Sprintf("Content from %s", platform)
	}
	return k.titleCaser.String(strings.ToLower(strings.Join(meaningful, " ")))
}

// usableTitle reports whether a scraped title carries real signal
// rather than a platform placeholder.
func usableTitle(title string) bool {
	switch title {
	case "", "Instagram Content", "YouTube Content":
		return false
	}
	return true
}

// truncate cuts a string to at most n runes, never mid-rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
