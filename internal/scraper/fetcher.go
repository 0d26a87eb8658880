package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/newshound/internal/bypass"
	"github.com/FranksOps/newshound/internal/fingerprint"
	"github.com/FranksOps/newshound/internal/metrics"
	"github.com/FranksOps/newshound/pkg/httpclient"
	"github.com/FranksOps/newshound/pkg/proxy"
	"github.com/FranksOps/newshound/pkg/useragent"
)

// ErrRateLimited marks a transient rate-limit rejection. Wrapped errors
// carry the upstream response text for context.
var ErrRateLimited = errors.New("rate limited")

// ErrBlocked marks a fetch that was answered with a challenge or block
// page instead of search results.
var ErrBlocked = errors.New("blocked by bot protection")

// Fetcher retrieves the raw HTML of a single URL. Implementations are the
// direct HTTP strategy, the delegated Firecrawl strategy, and the Retry
// wrapper around either.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (string, error)
}

// IsRateLimited reports whether err represents a rate-limit rejection,
// either as the typed sentinel or as upstream error text. The substring
// check is kept for compatibility with the scrape API's error bodies,
// which do not always come with a 429.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit")
}

type contextKey string

const proxyKey contextKey = "proxy_url"

// DirectConfig configures the direct HTTP fetch strategy.
type DirectConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	Fingerprint  fingerprint.Profile
	UAPool       *useragent.Pool
	ProxyPool    *proxy.Pool
	// Referer sent with every request. Defaults to the Naver search host,
	// which is what a browser paging through results would send.
	Referer string
}

// Direct fetches search pages straight from the target site, presenting
// browser-shaped headers and an optional browser TLS fingerprint.
type Direct struct {
	cfg    DirectConfig
	client *httpclient.Client
}

// NewDirect initializes the direct strategy. A single client is held
// across requests so connections are pooled for the fetcher's lifetime.
func NewDirect(cfg DirectConfig) (*Direct, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Referer == "" {
		cfg.Referer = "https://search.naver.com/"
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}

	// The proxy hook reads from the request context so the pool can
	// rotate per request without swapping transports.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		if req.URL.Hostname() == "127.0.0.1" || req.URL.Hostname() == "::1" {
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("scraper: transport setup: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("scraper: client setup: %w", err)
	}

	return &Direct{cfg: cfg, client: client}, nil
}

// Fetch executes a GET against the target URL. Any 2xx or 3xx status is a
// success; block pages detected in an otherwise successful response are
// reported as ErrBlocked.
func (d *Direct) Fetch(ctx context.Context, targetURL string) (string, error) {
	start := time.Now()

	var activeProxy *url.URL
	if d.cfg.ProxyPool != nil {
		activeProxy = d.cfg.ProxyPool.Next()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("scraper: build request: %w", err)
	}
	if activeProxy != nil {
		req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
	}

	req.Header.Set("User-Agent", d.cfg.UAPool.Next())
	req.Header.Set("Referer", d.cfg.Referer)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := d.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = d.cfg.ProxyPool.MarkFailure(activeProxy)
			metrics.ProxyFailures.WithLabelValues(activeProxy.String()).Inc()
		}
		metrics.RecordFetch("direct", "error", time.Since(start))
		return "", fmt.Errorf("scraper: request failed: %w", err)
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = d.cfg.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFetch("direct", "error", time.Since(start))
		return "", fmt.Errorf("scraper: read body: %w", err)
	}

	page := &bypass.Page{StatusCode: resp.StatusCode, Headers: resp.Header, Body: body}
	if detected, source := bypass.Analyze(page, bypass.DefaultDetectors()); detected {
		metrics.RecordFetch("direct", "blocked", time.Since(start))
		return "", fmt.Errorf("scraper: %s: %w", source, ErrBlocked)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		metrics.RecordFetch("direct", fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
		return "", fmt.Errorf("scraper: unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	metrics.RecordFetch("direct", fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
	return string(body), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
