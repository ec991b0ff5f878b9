package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/zombar/linksaver/models"
)

func testConfig() Config {
	config := DefaultConfig()
	config.HTTPTimeout = 5 * time.Second
	config.ReaderTimeout = 5 * time.Second
	config.ScrapeAPITimeout = 5 * time.Second
	return config
}

func TestYouTubeOEmbed(t *testing.T) {
	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://youtube.com/watch?v=abc123" {
			t.Errorf("oEmbed url param = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"title":         "Go Concurrency Patterns",
			"author_name":   "Google Developers",
			"thumbnail_url": "https://i.ytimg.com/vi/abc123/hqdefault.jpg",
		})
	}))
	defer oembed.Close()

	config := testConfig()
	config.YouTubeOEmbedURL = oembed.URL
	e := New(config)

	content := e.Extract(context.Background(), models.PlatformYouTube, "https://youtube.com/watch?v=abc123")
	if content == nil {
		t.Fatal("expected content, got nil")
	}
	if content.Title != "Go Concurrency Patterns" {
		t.Errorf("title = %q", content.Title)
	}
	if content.Description != "YouTube video by Google Developers" {
		t.Errorf("description = %q", content.Description)
	}
	if content.ThumbnailURL == "" {
		t.Error("expected thumbnail URL")
	}
}

func TestYouTubeOEmbedFailureYieldsNil(t *testing.T) {
	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer oembed.Close()

	config := testConfig()
	config.YouTubeOEmbedURL = oembed.URL
	e := New(config)

	// YouTube has no further fallback, so a miss empties the chain.
	if content := e.Extract(context.Background(), models.PlatformYouTube, "https://youtube.com/watch?v=gone"); content != nil {
		t.Errorf("expected nil content, got %+v", content)
	}
}

func TestInstagramApifyChain(t *testing.T) {
	apify := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("apify method = %s", r.Method)
		}
		if r.URL.Query().Get("token") != "test-token" {
			t.Errorf("missing token param")
		}
		json.NewEncoder(w).Encode([]map[string]any{{
			"caption":    "Leg day essentials\nFull routine in bio #fitness #gym",
			"hashtags":   []string{"fitness", "gym"},
			"displayUrl": "https://cdn.example.com/post.jpg",
		}})
	}))
	defer apify.Close()

	config := testConfig()
	config.ApifyToken = "test-token"
	config.ApifyEndpoint = apify.URL
	e := New(config)

	content := e.Extract(context.Background(), models.PlatformInstagram, "https://instagram.com/reel/xyz/")
	if content == nil {
		t.Fatal("expected content, got nil")
	}
	if content.Title != "Leg day essentials" {
		t.Errorf("title = %q", content.Title)
	}
	if len(content.Hashtags) != 2 {
		t.Errorf("hashtags = %v", content.Hashtags)
	}
	if content.ThumbnailURL != "https://cdn.example.com/post.jpg" {
		t.Errorf("thumbnail = %q", content.ThumbnailURL)
	}
}

func TestInstagramPlaceholderFallsThroughToOEmbed(t *testing.T) {
	apify := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{
			"caption": "Instagram Content",
		}})
	}))
	defer apify.Close()

	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"title": "Sunset over Santorini #travel",
		})
	}))
	defer oembed.Close()

	config := testConfig()
	config.ApifyToken = "test-token"
	config.ApifyEndpoint = apify.URL
	config.InstagramOEmbedURL = oembed.URL
	e := New(config)

	content := e.Extract(context.Background(), models.PlatformInstagram, "https://instagram.com/p/abc/")
	if content == nil {
		t.Fatal("expected oEmbed fallback content, got nil")
	}
	if content.Title != "Sunset over Santorini #travel" {
		t.Errorf("title = %q", content.Title)
	}
	if len(content.Hashtags) != 1 || content.Hashtags[0] != "travel" {
		t.Errorf("hashtags = %v", content.Hashtags)
	}
}

func TestInstagramWithoutTokenSkipsScrapingAPI(t *testing.T) {
	called := false
	apify := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer apify.Close()

	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer oembed.Close()

	config := testConfig()
	config.ApifyEndpoint = apify.URL
	config.InstagramOEmbedURL = oembed.URL
	e := New(config)

	if content := e.Extract(context.Background(), models.PlatformInstagram, "https://instagram.com/p/abc/"); content != nil {
		t.Errorf("expected nil content, got %+v", content)
	}
	if called {
		t.Error("scraping API should not be called without a token")
	}
}

func TestReaderService(t *testing.T) {
	page := "How I Built a Home Gym\nA complete guide to building out a garage gym on a budget.\nPart one covers flooring.\nPart two covers the rack.\nPart three covers accessories."
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer reader.Close()

	config := testConfig()
	config.ReaderBaseURL = reader.URL
	e := New(config)

	content := e.Extract(context.Background(), models.PlatformTwitter, "https://x.com/user/status/1")
	if content == nil {
		t.Fatal("expected content, got nil")
	}
	if content.Title != "How I Built a Home Gym" {
		t.Errorf("title = %q", content.Title)
	}
	if !strings.Contains(content.Description, "garage gym") {
		t.Errorf("description = %q", content.Description)
	}
	// Only lines 2-4 make the description.
	if strings.Contains(content.Description, "accessories") {
		t.Errorf("description should stop after three lines: %q", content.Description)
	}
}

func TestReaderShortTextFallsThroughToOpenGraph(t *testing.T) {
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Login required"))
	}))
	defer reader.Close()

	article := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html><head>
<meta property="og:title" content="Sourdough for Beginners">
<meta property="og:description" content="A no-knead starter recipe #food">
<meta property="og:image" content="https://example.com/loaf.jpg">
</head><body></body></html>`))
	}))
	defer article.Close()

	config := testConfig()
	config.ReaderBaseURL = reader.URL
	e := New(config)

	content := e.Extract(context.Background(), models.PlatformOther, article.URL)
	if content == nil {
		t.Fatal("expected Open-Graph fallback content, got nil")
	}
	if content.Title != "Sourdough for Beginners" {
		t.Errorf("title = %q", content.Title)
	}
	if content.Description != "A no-knead starter recipe #food" {
		t.Errorf("description = %q", content.Description)
	}
	if content.ThumbnailURL != "https://example.com/loaf.jpg" {
		t.Errorf("thumbnail = %q", content.ThumbnailURL)
	}
	if len(content.Hashtags) != 1 || content.Hashtags[0] != "food" {
		t.Errorf("hashtags = %v", content.Hashtags)
	}
}

func TestOpenGraphRequiresTitle(t *testing.T) {
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer reader.Close()

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><meta property="og:description" content="no title here"></head></html>`))
	}))
	defer page.Close()

	config := testConfig()
	config.ReaderBaseURL = reader.URL
	e := New(config)

	if content := e.Extract(context.Background(), models.PlatformOther, page.URL); content != nil {
		t.Errorf("expected nil without og:title, got %+v", content)
	}
}

func TestTruncateMultibyteCaption(t *testing.T) {
	caption := "héllo wörld 🌍 crème brûlée"
	for n := 1; n < utf8.RuneCountInString(caption); n++ {
		got := truncate(caption, n)
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%q, %d) produced invalid UTF-8: %q", caption, n, got)
		}
		if utf8.RuneCountInString(got) != n {
			t.Errorf("truncate(%q, %d) kept %d runes", caption, n, utf8.RuneCountInString(got))
		}
	}
	if got := truncate(caption, 500); got != caption {
		t.Errorf("expected short string unchanged, got %q", got)
	}
}

func TestExtractHashtags(t *testing.T) {
	tags := extractHashtags("Meal prep Sunday #food #recipe #mealprep")
	want := []string{"food", "recipe", "mealprep"}
	if len(tags) != len(want) {
		t.Fatalf("got %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
	if got := extractHashtags("no tags here"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
