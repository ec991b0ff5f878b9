package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zombar/linksaver/models"
)

// YouTubeOEmbed fetches video metadata from YouTube's oEmbed endpoint.
// Free, no API key, and it covers virtually every valid video URL, so
// the YouTube chain has no further fallback.
type YouTubeOEmbed struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

func (f *YouTubeOEmbed) Name() string { return "youtube-oembed" }

func (f *YouTubeOEmbed) TryFetch(ctx context.Context, targetURL string) (*models.ScrapedContent, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	oembedURL := fmt.Sprintf("%s?url=%s&format=json", f.endpoint, url.QueryEscape(targetURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oembedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oEmbed fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oEmbed returned %d", resp.StatusCode)
	}

	var payload struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode oEmbed response: %w", err)
	}

	description := "YouTube video"
	if payload.AuthorName != "" {
		description = "YouTube video by " + payload.AuthorName
	}

	return &models.ScrapedContent{
		Title:        payload.Title,
		Description:  description,
		ThumbnailURL: payload.ThumbnailURL,
	}, nil
}
