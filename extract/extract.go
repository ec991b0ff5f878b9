// Package extract implements the per-platform content extraction
// chains. Each platform maps to an ordered list of fetchers; the chain
// stops at the first fetcher that produces a usable result. A fetcher
// failure of any kind (network, parse, non-200 status) is a routine
// miss, never an error the caller sees.
package extract

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zombar/linksaver/models"
)

const userAgent = "Mozilla/5.0 (compatible; linksaver/1.0)"

// Fetcher is a single content-extraction strategy. A nil result is a
// miss; implementations apply their own acceptance rules and return
// nil for anything unusable.
type Fetcher interface {
	Name() string
	TryFetch(ctx context.Context, targetURL string) (*models.ScrapedContent, error)
}

// Config contains extractor configuration.
type Config struct {
	HTTPTimeout        time.Duration // base timeout for metadata fetches
	ReaderTimeout      time.Duration // timeout for the text-extraction reader service
	ScrapeAPITimeout   time.Duration // timeout for the scraping-API fetch (slow, runs an actor)
	ApifyToken         string        // empty disables the Instagram scraping-API fetcher
	ApifyEndpoint      string
	YouTubeOEmbedURL   string
	InstagramOEmbedURL string
	ReaderBaseURL      string
}

// DefaultConfig returns default extractor configuration.
func DefaultConfig() Config {
	return Config{
		HTTPTimeout:        10 * time.Second,
		ReaderTimeout:      15 * time.Second,
		ScrapeAPITimeout:   35 * time.Second,
		ApifyEndpoint:      "https://api.apify.com/v2/acts/apify~instagram-scraper/run-sync-get-dataset-items",
		YouTubeOEmbedURL:   "https://www.youtube.com/oembed",
		InstagramOEmbedURL: "https://www.instagram.com/oembed",
		ReaderBaseURL:      "https://r.jina.ai",
	}
}

// Extractor runs the per-platform fetcher chains.
type Extractor struct {
	chains     map[models.Platform][]Fetcher
	httpClient *http.Client
}

// New creates an Extractor with the chain registry wired per platform:
//
//	youtube    -> oEmbed
//	instagram  -> scraping API -> oEmbed
//	everything else -> reader service -> Open-Graph scrape
//
// Instagram deliberately never falls through to the reader or the
// generic scrape: the site's login wall blocks unauthenticated access,
// so those calls only waste time.
func New(config Config) *Extractor {
	client := &http.Client{
		// Per-fetcher deadlines come from request contexts; the client
		// timeout is a backstop for the slowest chain member.
		Timeout:   config.ScrapeAPITimeout + 5*time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	youtube := &YouTubeOEmbed{client: client, endpoint: config.YouTubeOEmbedURL, timeout: config.HTTPTimeout}
	apify := &ApifyInstagram{client: client, endpoint: config.ApifyEndpoint, token: config.ApifyToken, timeout: config.ScrapeAPITimeout}
	igOEmbed := &InstagramOEmbed{client: client, endpoint: config.InstagramOEmbedURL, timeout: config.HTTPTimeout}
	reader := &ReaderService{client: client, baseURL: config.ReaderBaseURL, timeout: config.ReaderTimeout}
	generic := &OpenGraphScrape{client: client, timeout: config.HTTPTimeout}

	articleChain := []Fetcher{reader, generic}

	return &Extractor{
		httpClient: client,
		chains: map[models.Platform][]Fetcher{
			models.PlatformYouTube:   {youtube},
			models.PlatformInstagram: {apify, igOEmbed},
			models.PlatformTwitter:   articleChain,
			models.PlatformFacebook:  articleChain,
			models.PlatformOther:     articleChain,
		},
	}
}

// Extract runs the chain for the given platform and returns the first
// accepted result, or nil when every fetcher missed. A nil result is
// not an error: the analyzer can still work from the URL alone.
func (e *Extractor) Extract(ctx context.Context, platform models.Platform, targetURL string) *models.ScrapedContent {
	chain, ok := e.chains[platform]
	if !ok {
		chain = e.chains[models.PlatformOther]
	}

	for _, fetcher := range chain {
		content, err := fetcher.TryFetch(ctx, targetURL)
		if err != nil {
			slog.Warn("fetcher miss", "fetcher", fetcher.Name(), "platform", platform, "url", targetURL, "error", err)
			fallbackCounter.WithLabelValues(string(platform), fetcher.Name()).Inc()
			continue
		}
		if content == nil || content.Title == "" {
			fallbackCounter.WithLabelValues(string(platform), fetcher.Name()).Inc()
			continue
		}
		slog.Info("content extracted", "fetcher", fetcher.Name(), "platform", platform, "title", truncate(content.Title, 80))
		return content
	}

	return nil
}

// truncate cuts a string to at most n runes. Captions are routinely
// emoji-heavy; slicing bytes would split a rune and produce invalid
// UTF-8 that the database rejects.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// firstLines splits text into trimmed non-empty lines.
func firstLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
