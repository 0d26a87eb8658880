// Package integration exercises the full collection path: the direct
// HTTP fetcher against a local fake of the news search site, through
// extraction, dedupe, and filtering, down to a CSV output file.
package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/newshound/internal/pipeline"
	"github.com/FranksOps/newshound/internal/scraper"
	"github.com/FranksOps/newshound/internal/storage/csvbackend"
	"github.com/FranksOps/newshound/pkg/ratelimit"
)

// rehostFetcher sends every fetch to the fake server, preserving the
// query string the collector built.
type rehostFetcher struct {
	inner scraper.Fetcher
	base  string
}

func (r *rehostFetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return "", err
	}
	return r.inner.Fetch(ctx, r.base+"?"+u.RawQuery)
}

func fakeResultsPage(anchors ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="news_area">`)
	for _, a := range anchors {
		fmt.Fprintf(&b, `<a href=%q class="news_tit">%s</a>`, a[1], a[0])
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

func TestCollectionEndToEnd(t *testing.T) {
	pages := map[string]string{
		"1": fakeResultsPage(
			[2]string{"수도권 전세가 상승세 지속", "https://news.example.com/article/100"},
			[2]string{"기준금리 동결 전망 우세", "https://news.example.com/article/101"},
			// Repeat of the first headline, as syndicated listings do.
			[2]string{"수도권 전세가 상승세 지속", "https://news.example.com/article/102"},
		),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, pages[r.URL.Query().Get("start")])
	}))
	defer srv.Close()

	direct, err := scraper.NewDirect(scraper.DirectConfig{Fingerprint: "go"})
	if err != nil {
		t.Fatalf("NewDirect: %v", err)
	}
	fetcher := scraper.NewRetry(&rehostFetcher{inner: direct, base: srv.URL}, scraper.RetryConfig{}, nil)

	outPath := filepath.Join(t.TempDir(), "titles.csv")
	backend, err := csvbackend.New(outPath)
	if err != nil {
		t.Fatalf("csvbackend: %v", err)
	}
	defer backend.Close()

	collector, err := pipeline.New(pipeline.Config{
		Fetcher:  fetcher,
		Pacer:    ratelimit.NewPacer(0, 0),
		MaxPages: 2,
		Backend:  backend,
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	items, summary, err := collector.Run(context.Background(), "부동산", 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 unique: %+v", len(items), items)
	}
	if items[0].Title != "수도권 전세가 상승세 지속" || items[1].Title != "기준금리 동결 전망 우세" {
		t.Errorf("discovery order broken: %+v", items)
	}
	if items[0].Link != "https://news.example.com/article/100" {
		t.Errorf("repeat should keep first-seen link, got %q", items[0].Link)
	}
	if summary.DuplicatesSkipped != 1 {
		t.Errorf("DuplicatesSkipped = %d, want 1", summary.DuplicatesSkipped)
	}
	if summary.EmptyPages != 1 {
		t.Errorf("EmptyPages = %d, want 1 (second page has no results)", summary.EmptyPages)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	got := strings.TrimSpace(string(data))
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want header plus 2 rows:\n%s", len(lines), got)
	}
	if lines[0] != "title,link" {
		t.Errorf("csv header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "수도권 전세가 상승세 지속") {
		t.Errorf("csv row 1 = %q", lines[1])
	}
}

func TestCollectionSurvivesRateLimit(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, "Rate limit exceeded")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, fakeResultsPage(
			[2]string{"환율 급등에 수출주 강세", "https://news.example.com/article/200"},
		))
	}))
	defer srv.Close()

	direct, err := scraper.NewDirect(scraper.DirectConfig{Fingerprint: "go"})
	if err != nil {
		t.Fatalf("NewDirect: %v", err)
	}
	retry := scraper.NewRetry(
		&rehostFetcher{inner: direct, base: srv.URL},
		scraper.RetryConfig{MaxAttempts: 3, Delay: time.Millisecond},
		nil,
	)

	collector, err := pipeline.New(pipeline.Config{
		Fetcher:  retry,
		Pacer:    ratelimit.NewPacer(0, 0),
		MaxPages: 1,
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	items, summary, err := collector.Run(context.Background(), "환율", 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if summary.RateLimitRetries != 1 {
		t.Errorf("RateLimitRetries = %d, want 1", summary.RateLimitRetries)
	}
}
