package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newshound_fetches_total",
			Help: "Total page fetches executed, by strategy and outcome",
		},
		[]string{"strategy", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newshound_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"strategy"},
	)

	ItemsCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newshound_items_collected_total",
			Help: "Unique headlines accepted into result sets",
		},
	)

	DuplicatesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newshound_duplicates_skipped_total",
			Help: "Extracted headlines rejected as exact-title duplicates",
		},
	)

	RateLimitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newshound_rate_limit_retries_total",
			Help: "Fetch attempts retried after a rate-limit rejection",
		},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newshound_proxy_failures_total",
			Help: "Request failures attributed to an upstream proxy",
		},
		[]string{"proxy_url"},
	)
)

// RecordFetch updates the fetch counters for one completed attempt.
func RecordFetch(strategy, status string, duration time.Duration) {
	FetchesTotal.WithLabelValues(strategy, status).Inc()
	FetchDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// Server exposes /metrics for Prometheus scraping, used by serve mode.
type Server struct {
	srv *http.Server
}

// Start begins listening on the given address in a background goroutine.
func Start(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
