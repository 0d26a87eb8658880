package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/FranksOps/newshound/internal/metrics"
	"github.com/FranksOps/newshound/pkg/httpclient"
)

// DefaultFirecrawlEndpoint is the production scrape endpoint.
const DefaultFirecrawlEndpoint = "https://api.firecrawl.dev/v1/scrape"

// FirecrawlConfig configures the delegated scrape strategy.
type FirecrawlConfig struct {
	APIKey string
	// Endpoint overrides the production API URL, used by tests.
	Endpoint string
	Timeout  time.Duration
}

// Firecrawl delegates fetching to the Firecrawl scrape API, which renders
// the page server-side and returns its HTML. Used when direct access is
// blocked or undesirable.
type Firecrawl struct {
	cfg    FirecrawlConfig
	client *httpclient.Client
}

type firecrawlRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type firecrawlResponse struct {
	Data struct {
		HTML string `json:"html"`
	} `json:"data"`
	// Older API versions put the HTML at the top level.
	HTML string `json:"html"`
}

// NewFirecrawl initializes the delegated strategy. The API key must be
// non-empty; resolution from env/config is the caller's concern.
func NewFirecrawl(cfg FirecrawlConfig) (*Firecrawl, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("scraper: firecrawl API key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultFirecrawlEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, MaxRedirects: 5})
	if err != nil {
		return nil, fmt.Errorf("scraper: client setup: %w", err)
	}

	return &Firecrawl{cfg: cfg, client: client}, nil
}

// Fetch POSTs the target URL to the scrape API and returns the rendered
// HTML. A 429 response, or an error body mentioning a rate limit, yields
// ErrRateLimited so the Retry wrapper can back off.
func (f *Firecrawl) Fetch(ctx context.Context, targetURL string) (string, error) {
	start := time.Now()

	payload, err := json.Marshal(firecrawlRequest{URL: targetURL, Formats: []string{"html"}})
	if err != nil {
		return "", fmt.Errorf("scraper: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		metrics.RecordFetch("firecrawl", "error", time.Since(start))
		return "", fmt.Errorf("scraper: firecrawl request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFetch("firecrawl", "error", time.Since(start))
		return "", fmt.Errorf("scraper: read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.RecordFetch("firecrawl", "429", time.Since(start))
		return "", fmt.Errorf("scraper: %w: %s", ErrRateLimited, truncate(body, 200))
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordFetch("firecrawl", fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
		// The API occasionally reports rate limiting with a non-429 status.
		if strings.Contains(strings.ToLower(string(body)), "rate limit") {
			return "", fmt.Errorf("scraper: %w: HTTP %d: %s", ErrRateLimited, resp.StatusCode, truncate(body, 200))
		}
		return "", fmt.Errorf("scraper: firecrawl HTTP %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var parsed firecrawlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.RecordFetch("firecrawl", "error", time.Since(start))
		return "", fmt.Errorf("scraper: decode response: %w", err)
	}

	html := parsed.Data.HTML
	if html == "" {
		html = parsed.HTML
	}

	metrics.RecordFetch("firecrawl", "200", time.Since(start))
	return html, nil
}
