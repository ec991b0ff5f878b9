// Package ingest orchestrates the save pipeline: classify the URL,
// run the platform extraction chain, analyze the signal, apply the
// user's manual category override, archive a snapshot and persist the
// record. Every path ends in a user-facing reply string; pipeline
// failures never surface as errors to the webhook layer.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zombar/linksaver/analyze"
	"github.com/zombar/linksaver/models"
	"github.com/zombar/linksaver/slug"
)

const maxFoldedHashtags = 10

// FailureReply is sent whenever the pipeline cannot save a link.
const FailureReply = "❌ Something went wrong saving your link. Please try again."

// Store persists finished records.
type Store interface {
	Create(ctx context.Context, record *models.ContentRecord) error
}

// Extractor runs a platform's extraction chain. A nil result means no
// fetcher produced usable signal.
type Extractor interface {
	Extract(ctx context.Context, platform models.Platform, targetURL string) *models.ScrapedContent
}

// Archiver stores raw ingestion snapshots. Archiving is best effort
// and never blocks a save.
type Archiver interface {
	SaveSnapshot(ctx context.Context, name string, data []byte) (string, error)
}

// Config contains pipeline configuration.
type Config struct {
	// FrontendURL is appended to save confirmations as the view link.
	FrontendURL string
}

// DefaultConfig returns default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		FrontendURL: "http://localhost:3000",
	}
}

// Pipeline wires extraction, analysis, archival and persistence into
// the single Process operation the webhook handler calls.
type Pipeline struct {
	store       Store
	extractor   Extractor
	analyzer    analyze.Analyzer
	keyword     *analyze.Keyword
	archive     Archiver
	frontendURL string
	tracer      trace.Tracer
	caser       cases.Caser
}

// New creates a Pipeline. archive may be nil to disable snapshots.
func New(config Config, store Store, extractor Extractor, analyzer analyze.Analyzer, archive Archiver) *Pipeline {
	return &Pipeline{
		store:       store,
		extractor:   extractor,
		analyzer:    analyzer,
		keyword:     analyze.NewKeyword(),
		archive:     archive,
		frontendURL: config.FrontendURL,
		tracer:      otel.Tracer("linksaver/ingest"),
		caser:       cases.Title(language.English),
	}
}

var categoryIcons = map[models.Category]string{
	models.CategoryFitness:       "[Fitness]",
	models.CategoryCoding:        "[Coding]",
	models.CategoryFood:          "[Food]",
	models.CategoryTravel:        "[Travel]",
	models.CategoryDesign:        "[Design]",
	models.CategoryFashion:       "[Fashion]",
	models.CategoryBusiness:      "[Business]",
	models.CategoryEducation:     "[Education]",
	models.CategoryEntertainment: "[Entertainment]",
	models.CategoryOther:         "[Other]",
}

// Process saves one link for a user and returns the reply to send
// back. overrideTag is the bare category name from a message hashtag,
// or empty; an unknown tag is ignored.
func (p *Pipeline) Process(ctx context.Context, userPhone, targetURL, overrideTag string) string {
	ctx, span := p.tracer.Start(ctx, "ingest.Process")
	defer span.End()

	platform := DetectPlatform(targetURL)
	span.SetAttributes(
		attribute.String("ingest.platform", string(platform)),
		attribute.String("ingest.url", targetURL),
	)

	scraped := p.extractor.Extract(ctx, platform, targetURL)
	var scrapedTitle, scrapedDesc, thumbnail string
	if scraped != nil {
		scrapedTitle = scraped.Title
		scrapedDesc = foldHashtags(scraped.Description, scraped.Hashtags)
		thumbnail = scraped.ThumbnailURL
	}

	slog.Info("link scraped",
		"url", targetURL,
		"platform", platform,
		"title", scrapedTitle,
		"override", overrideTag,
	)

	result, err := p.analyzer.Analyze(ctx, targetURL, platform, scrapedTitle, scrapedDesc)
	method := p.analyzer.Method()
	if err != nil {
		slog.Warn("analysis failed, using keyword analyzer", "url", targetURL, "error", err)
		result, _ = p.keyword.Analyze(ctx, targetURL, platform, scrapedTitle, scrapedDesc)
		method = p.keyword.Method()
	}

	title := result.Title
	if title == "" {
		title = scrapedTitle
	}
	if title == "" {
		title = fmt.Sprintf("%s Content", p.caser.String(string(platform)))
	}
	description := result.Description
	if description == "" {
		description = scrapedDesc
	}

	category := result.Category
	tags := result.Tags
	if override, ok := models.ParseCategory(overrideTag); ok && overrideTag != "" {
		category = override
		tags = prependTag(tags, string(override))
		method = fmt.Sprintf("%s + manual #%s", method, override)
	} else {
		overrideTag = ""
	}

	record := &models.ContentRecord{
		ID:           uuid.NewString(),
		UserPhone:    userPhone,
		URL:          targetURL,
		Platform:     platform,
		Title:        title,
		Description:  description,
		Category:     category,
		Tags:         tags,
		AISummary:    result.AISummary,
		ThumbnailURL: thumbnail,
		CreatedAt:    time.Now().UTC(),
	}
	record.SnapshotPath = p.archiveSnapshot(ctx, record, scraped, result, method)

	if err := p.store.Create(ctx, record); err != nil {
		slog.Error("failed to persist record", "url", targetURL, "user", userPhone, "error", err)
		ingestCounter.WithLabelValues(string(platform), "failed").Inc()
		return FailureReply
	}
	ingestCounter.WithLabelValues(string(platform), "saved").Inc()

	overrideNote := ""
	if overrideTag != "" {
		overrideNote = fmt.Sprintf(" _(you tagged #%s)_", overrideTag)
	}

	return fmt.Sprintf(
		"[OK] Saved to *%s* %s%s\n\n"+
			"[Info] %s\n\n"+
			"[%s] • %s_\n\n"+
			"View: %s",
		p.caser.String(string(category)), categoryIcons[category], overrideNote,
		record.AISummary,
		method, p.caser.String(string(platform)),
		p.frontendURL,
	)
}

// HelpReply is sent when a message carries no URL.
func HelpReply() string {
	return "👋 *Social Saver*\n\n" +
		"Send me any link to save it:\n" +
		"• 📸 Instagram posts & reels\n" +
		"• 🎥 YouTube videos\n" +
		"• 🐦 Twitter/X posts\n" +
		"• 🔗 Any article or webpage\n\n" +
		"💡 *Tip:* Add a hashtag to force a category:\n" +
		"  `https://instagram.com/... #fitness`\n" +
		"  `https://youtube.com/... #coding`\n\n" +
		"Supported: #fitness #coding #food #travel\n" +
		"#design #fashion #business #education #entertainment"
}

// archiveSnapshot writes the raw extraction signal and analysis
// verdict to the archive. Failures are logged and the save continues.
func (p *Pipeline) archiveSnapshot(ctx context.Context, record *models.ContentRecord, scraped *models.ScrapedContent, result *models.AnalysisResult, method string) string {
	if p.archive == nil {
		return ""
	}
	snap := models.Snapshot{
		URL:       record.URL,
		Platform:  record.Platform,
		Scraped:   scraped,
		Analysis:  result,
		Method:    method,
		FetchedAt: record.CreatedAt,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		slog.Warn("failed to encode snapshot", "url", record.URL, "error", err)
		return ""
	}
	name := slug.ForRecord(record.Title, record.URL, string(record.Platform))
	path, err := p.archive.SaveSnapshot(ctx, name, data)
	if err != nil {
		slog.Warn("failed to archive snapshot", "url", record.URL, "error", err)
		return ""
	}
	return path
}

// foldHashtags appends scraped hashtags to the description so the
// analyzer sees them as plain text context.
func foldHashtags(description string, hashtags []string) string {
	if len(hashtags) == 0 {
		return description
	}
	if len(hashtags) > maxFoldedHashtags {
		hashtags = hashtags[:maxFoldedHashtags]
	}
	parts := make([]string, len(hashtags))
	for i, h := range hashtags {
		parts[i] = "#" + h
	}
	return strings.TrimSpace(description + " " + strings.Join(parts, " "))
}

// prependTag puts tag at the front unless already present, keeping the
// list capped at five entries.
func prependTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	tags = append([]string{tag}, tags...)
	if len(tags) > 5 {
		tags = tags[:5]
	}
	return tags
}
