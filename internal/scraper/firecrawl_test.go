package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFirecrawl_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		body, _ := io.ReadAll(r.Body)
		var req firecrawlRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Formats) != 1 || req.Formats[0] != "html" {
			t.Errorf("expected html format, got %v", req.Formats)
		}

		_, _ = w.Write([]byte(`{"data":{"html":"<html>rendered</html>"}}`))
	}))
	defer ts.Close()

	f, err := NewFirecrawl(FirecrawlConfig{APIKey: "test-key", Endpoint: ts.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html, err := f.Fetch(context.Background(), "https://search.naver.com/search.naver?query=x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "<html>rendered</html>" {
		t.Errorf("unexpected html: %q", html)
	}
}

func TestFirecrawl_LegacyTopLevelHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"html":"<p>old shape</p>"}`))
	}))
	defer ts.Close()

	f, _ := NewFirecrawl(FirecrawlConfig{APIKey: "test-key", Endpoint: ts.URL})

	html, err := f.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "<p>old shape</p>" {
		t.Errorf("unexpected html: %q", html)
	}
}

func TestFirecrawl_RateLimit429(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"too many requests"}`))
	}))
	defer ts.Close()

	f, _ := NewFirecrawl(FirecrawlConfig{APIKey: "test-key", Endpoint: ts.URL})

	_, err := f.Fetch(context.Background(), "https://example.com")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestFirecrawl_RateLimitByBodyText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"Rate limit exceeded, upgrade your plan"}`))
	}))
	defer ts.Close()

	f, _ := NewFirecrawl(FirecrawlConfig{APIKey: "test-key", Endpoint: ts.URL})

	_, err := f.Fetch(context.Background(), "https://example.com")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited from body text, got %v", err)
	}
}

func TestFirecrawl_OtherErrorNotRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer ts.Close()

	f, _ := NewFirecrawl(FirecrawlConfig{APIKey: "bad-key", Endpoint: ts.URL})

	_, err := f.Fetch(context.Background(), "https://example.com")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrRateLimited) {
		t.Errorf("401 must not classify as rate limited: %v", err)
	}
}

func TestFirecrawl_RequiresKey(t *testing.T) {
	if _, err := NewFirecrawl(FirecrawlConfig{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
