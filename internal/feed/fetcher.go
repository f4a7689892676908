package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// HTTPSource fetches the incident feed over HTTP and parses it with gofeed.
type HTTPSource struct {
	feedURL      string
	dashboardURL string
	userAgent    string
	client       *http.Client
	parser       *gofeed.Parser
}

// NewHTTPSource creates a feed source for the given Atom feed URL.
func NewHTTPSource(feedURL, dashboardURL, userAgent string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPSource{
		feedURL:      feedURL,
		dashboardURL: dashboardURL,
		userAgent:    userAgent,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		parser: gofeed.NewParser(),
	}
}

// FetchEntries downloads and parses the feed, returning entries oldest first.
func (s *HTTPSource) FetchEntries(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/atom+xml, application/xml, text/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed fetch returned HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	parsed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries, err := extractEntries(parsed, s.dashboardURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract feed entries: %w", err)
	}

	return entries, nil
}
