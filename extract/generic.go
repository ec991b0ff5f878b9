package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/zombar/linksaver/models"
)

// OpenGraphScrape is the last-resort fetcher: fetch the page itself and
// read its og:title / og:description / og:image meta tags. Accepted
// only when og:title is present.
type OpenGraphScrape struct {
	client  *http.Client
	timeout time.Duration
}

func (f *OpenGraphScrape) Name() string { return "opengraph" }

func (f *OpenGraphScrape) TryFetch(ctx context.Context, targetURL string) (*models.ScrapedContent, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title, description, image := extractOpenGraph(doc)
	if title == "" {
		return nil, fmt.Errorf("page has no og:title")
	}

	return &models.ScrapedContent{
		Title:        title,
		Description:  description,
		ThumbnailURL: image,
		Hashtags:     extractHashtags(description),
	}, nil
}

// extractOpenGraph walks the document for og:title, og:description and
// og:image meta tags, keeping the first occurrence of each.
func extractOpenGraph(n *html.Node) (title, description, image string) {
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var property, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property":
					property = strings.ToLower(attr.Val)
				case "content":
					content = attr.Val
				}
			}

			if content == "" {
				return
			}

			switch property {
			case "og:title":
				if title == "" {
					title = strings.TrimSpace(content)
				}
			case "og:description":
				if description == "" {
					description = strings.TrimSpace(content)
				}
			case "og:image":
				if image == "" {
					image = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return title, description, image
}
