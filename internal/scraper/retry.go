package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/FranksOps/newshound/internal/metrics"
)

// RetryConfig bounds the retry behavior for rate-limited fetches.
type RetryConfig struct {
	// MaxAttempts is the total number of fetch attempts, first try
	// included. Defaults to 5.
	MaxAttempts int
	// Delay is the fixed wait between rate-limited attempts.
	// Defaults to 2500ms.
	Delay time.Duration
}

// Retry wraps a Fetcher with bounded retry on rate-limit errors. Any
// other failure propagates immediately after a single attempt.
type Retry struct {
	inner   Fetcher
	cfg     RetryConfig
	logger  *slog.Logger
	retries atomic.Int64
}

// Retries reports how many rate-limited attempts were retried over the
// lifetime of the wrapper.
func (r *Retry) Retries() int {
	return int(r.retries.Load())
}

// NewRetry wraps the given fetcher.
func NewRetry(inner Fetcher, cfg RetryConfig, logger *slog.Logger) *Retry {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 2500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retry{inner: inner, cfg: cfg, logger: logger}
}

// Fetch attempts the wrapped fetch, sleeping the fixed delay between
// rate-limited attempts. The last rate-limit error is returned once the
// attempt ceiling is reached.
func (r *Retry) Fetch(ctx context.Context, targetURL string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		html, err := r.inner.Fetch(ctx, targetURL)
		if err == nil {
			return html, nil
		}
		if !IsRateLimited(err) {
			return "", err
		}

		lastErr = err
		r.retries.Add(1)
		metrics.RateLimitRetries.Inc()

		if attempt == r.cfg.MaxAttempts {
			break
		}

		r.logger.Warn("rate limited, backing off",
			"url", targetURL, "attempt", attempt, "delay", r.cfg.Delay)

		timer := time.NewTimer(r.cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	return "", fmt.Errorf("scraper: giving up after %d attempts: %w", r.cfg.MaxAttempts, lastErr)
}
