package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zombar/linksaver/models"
)

// minReaderTextLen is the acceptance threshold for reader output; pages
// behind paywalls or consent walls tend to yield a few words of chrome.
const minReaderTextLen = 50

// ReaderService extracts readable plain text through a reader proxy
// (r.jina.ai style: GET <base>/<url> returns the page as text). Works
// well for Twitter/X, articles and blogs.
type ReaderService struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

func (f *ReaderService) Name() string { return "reader" }

func (f *ReaderService) TryFetch(ctx context.Context, targetURL string) (*models.ScrapedContent, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	readerURL := strings.TrimSuffix(f.baseURL, "/") + "/" + targetURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, readerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reader fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reader returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read reader response: %w", err)
	}

	text := strings.TrimSpace(string(body))
	if len(text) <= minReaderTextLen {
		return nil, fmt.Errorf("reader text too short (%d chars)", len(text))
	}

	lines := firstLines(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("reader text has no content lines")
	}

	title := truncate(lines[0], 200)

	var description string
	if len(lines) > 1 {
		end := len(lines)
		if end > 4 {
			end = 4
		}
		description = truncate(strings.Join(lines[1:end], " "), 400)
	}

	return &models.ScrapedContent{
		Title:       title,
		Description: description,
	}, nil
}
