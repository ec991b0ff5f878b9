package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/zombar/linksaver/models"
)

// placeholderTitle is the generic title Instagram surfaces when the
// real caption is unavailable; a result carrying it is treated as a
// miss so the chain can try the next fetcher.
const placeholderTitle = "Instagram Content"

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ApifyInstagram fetches the full caption, hashtags and thumbnail of an
// Instagram post through an authenticated scraping-API actor. Without a
// token it always misses, which pushes the chain to oEmbed.
type ApifyInstagram struct {
	client   *http.Client
	endpoint string
	token    string
	timeout  time.Duration
}

func (f *ApifyInstagram) Name() string { return "instagram-apify" }

func (f *ApifyInstagram) TryFetch(ctx context.Context, targetURL string) (*models.ScrapedContent, error) {
	if f.token == "" {
		return nil, fmt.Errorf("scraping-API token not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]any{
		"directUrls":   []string{targetURL},
		"resultsType":  "posts",
		"resultsLimit": 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s?token=%s&timeout=30", f.endpoint, url.QueryEscape(f.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraping-API fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraping API returned %d", resp.StatusCode)
	}

	var items []struct {
		Caption      string   `json:"caption"`
		Alt          string   `json:"alt"`
		Hashtags     []string `json:"hashtags"`
		DisplayURL   string   `json:"displayUrl"`
		ThumbnailURL string   `json:"thumbnailUrl"`
		PreviewURL   string   `json:"previewUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}

	post := items[0]
	caption := post.Caption
	if caption == "" {
		caption = post.Alt
	}

	thumbnail := post.DisplayURL
	if thumbnail == "" {
		thumbnail = post.ThumbnailURL
	}
	if thumbnail == "" {
		thumbnail = post.PreviewURL
	}

	var title string
	if lines := firstLines(caption); len(lines) > 0 {
		title = truncate(lines[0], 250)
	}
	if title == "" || title == placeholderTitle {
		return nil, fmt.Errorf("no usable caption")
	}

	return &models.ScrapedContent{
		Title:        title,
		Description:  truncate(caption, 600),
		ThumbnailURL: thumbnail,
		Hashtags:     post.Hashtags,
	}, nil
}

// InstagramOEmbed is the partial fallback: title only, and frequently
// a 401 without platform credentials.
type InstagramOEmbed struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

func (f *InstagramOEmbed) Name() string { return "instagram-oembed" }

func (f *InstagramOEmbed) TryFetch(ctx context.Context, targetURL string) (*models.ScrapedContent, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	oembedURL := fmt.Sprintf("%s?url=%s", f.endpoint, url.QueryEscape(targetURL))
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
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode oEmbed response: %w", err)
	}
	if payload.Title == "" {
		return nil, fmt.Errorf("oEmbed response has no title")
	}

	return &models.ScrapedContent{
		Title:        payload.Title,
		ThumbnailURL: payload.ThumbnailURL,
		Hashtags:     extractHashtags(payload.Title),
	}, nil
}

// extractHashtags pulls #word tokens out of free text.
func extractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}
