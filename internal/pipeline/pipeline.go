// Package pipeline drives a collection run: paginated fetching, title
// extraction, dedupe and filtering, and incremental persistence, with a
// run summary reported at the end.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/newshound/internal/extract"
	"github.com/FranksOps/newshound/internal/filter"
	"github.com/FranksOps/newshound/internal/metrics"
	"github.com/FranksOps/newshound/internal/report"
	"github.com/FranksOps/newshound/internal/scraper"
	"github.com/FranksOps/newshound/internal/search"
	"github.com/FranksOps/newshound/internal/storage"
	"github.com/FranksOps/newshound/pkg/ratelimit"
)

// DefaultMaxPages bounds a run that never reaches its limit. At ten
// results per page this covers Naver's entire 3000-result window.
const DefaultMaxPages = 300

// DefaultPageDelay is the pause between page fetches.
const DefaultPageDelay = 900 * time.Millisecond

// MaxLimit is the largest result count a single run will collect.
const MaxLimit = 100

// Config wires a Collector. Fetcher is required; everything else has a
// usable zero value.
type Config struct {
	// Fetcher retrieves page HTML. Wrap it in scraper.NewRetry to get
	// rate-limit retries counted into the run summary.
	Fetcher scraper.Fetcher

	// Strategies are tried in order per page; nil uses extract.Default().
	Strategies []extract.Strategy

	// Filters reject candidate titles after exact dedupe. Nil means no
	// editorial filtering.
	Filters []filter.TitleFilter

	// Pacer spaces out page fetches. Nil uses DefaultPageDelay with no
	// jitter.
	Pacer *ratelimit.Pacer

	// MaxPages caps the pagination walk; zero or negative uses
	// DefaultMaxPages.
	MaxPages int

	// Robots, when set, is consulted before the first page fetch. A
	// disallow aborts the run.
	Robots    *scraper.RobotsAuditor
	UserAgent string

	// Backend receives each accepted item as it is found, so output
	// files fill incrementally even if the run dies midway. Optional.
	Backend storage.Backend

	Logger *slog.Logger
}

// Collector runs search collections. Safe for sequential reuse across
// queries; a single run fetches pages one at a time on purpose, the
// target does not take kindly to parallel scraping.
type Collector struct {
	cfg    Config
	pacer  *ratelimit.Pacer
	logger *slog.Logger
}

var _ search.Provider = (*Collector)(nil)

// New validates cfg and applies defaults.
func New(cfg Config) (*Collector, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("pipeline: fetcher is required")
	}
	if cfg.Strategies == nil {
		cfg.Strategies = extract.Default()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	pacer := cfg.Pacer
	if pacer == nil {
		pacer = ratelimit.NewPacer(DefaultPageDelay, 0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{cfg: cfg, pacer: pacer, logger: logger}, nil
}

// Run collects up to limit unique headlines for query. Limits are
// clamped to [1, MaxLimit]. The returned items are in discovery order
// and always accompany the summary, even when err is non-nil: a fetch
// failure mid-run surfaces the error alongside everything collected so
// far.
func (c *Collector) Run(ctx context.Context, query string, limit int) ([]search.Item, report.Summary, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	summary := report.Summary{
		Query:     query,
		Limit:     limit,
		StartTime: time.Now().UTC(),
	}
	finish := func(err error) ([]search.Item, report.Summary, error) {
		if r, ok := c.cfg.Fetcher.(*scraper.Retry); ok {
			summary.RateLimitRetries = r.Retries()
		}
		summary.Finish()
		return nil, summary, err
	}

	if c.cfg.Robots != nil {
		allowed, err := c.cfg.Robots.IsAllowed(ctx, search.BuildURL(query, 1), c.cfg.UserAgent)
		if err != nil {
			c.logger.Warn("robots check failed, proceeding", "error", err)
		} else if !allowed {
			return finish(fmt.Errorf("robots.txt disallows fetching search results"))
		}
	}

	var (
		items  []search.Item
		titles []string
	)
	done := func(err error) ([]search.Item, report.Summary, error) {
		_, summaryOut, errOut := finish(err)
		return items, summaryOut, errOut
	}

	for page := 0; page < c.cfg.MaxPages && len(items) < limit; page++ {
		if page > 0 {
			if err := c.pacer.Wait(ctx); err != nil {
				return done(err)
			}
		}
		start := page*search.PageSize + 1
		pageURL := search.BuildURL(query, start)

		html, err := c.cfg.Fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return done(fmt.Errorf("fetch page start=%d: %w", start, err))
		}
		summary.PagesFetched++

		candidates := extract.Chain(html, c.cfg.Strategies...)
		if len(candidates) == 0 {
			summary.EmptyPages++
			c.logger.Debug("no titles on page", "query", query, "start", start)
			continue
		}

		for _, cand := range candidates {
			if containsTitle(titles, cand.Title) {
				summary.DuplicatesSkipped++
				metrics.DuplicatesSkipped.Inc()
				continue
			}
			if filter.Apply(cand.Title, titles, c.cfg.Filters...) {
				summary.FilteredOut++
				c.logger.Debug("title filtered", "title", cand.Title)
				continue
			}

			items = append(items, cand)
			titles = append(titles, cand.Title)
			summary.ItemsCollected++
			metrics.ItemsCollected.Inc()
			c.save(ctx, query, cand, start)

			if len(items) >= limit {
				break
			}
		}
		c.logger.Info("page collected",
			"query", query, "start", start,
			"collected", len(items), "limit", limit)
	}

	return done(nil)
}

// Search implements search.Provider over a full collection run,
// discarding the summary.
func (c *Collector) Search(ctx context.Context, query string, limit int) ([]search.Item, error) {
	items, _, err := c.Run(ctx, query, limit)
	return items, err
}

// save forwards an accepted item to the backend. Persistence failures
// are logged and skipped; a broken sink should not kill the run.
func (c *Collector) save(ctx context.Context, query string, item search.Item, start int) {
	if c.cfg.Backend == nil {
		return
	}
	h := &storage.Headline{
		ID:          uuid.NewString(),
		Query:       query,
		Title:       item.Title,
		Link:        item.Link,
		Page:        start,
		CollectedAt: time.Now().UTC(),
	}
	if err := c.cfg.Backend.Save(ctx, h); err != nil {
		c.logger.Warn("save failed", "title", item.Title, "error", err)
	}
}

func containsTitle(titles []string, title string) bool {
	for _, t := range titles {
		if t == title {
			return true
		}
	}
	return false
}
