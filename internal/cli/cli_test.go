package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildFetcher_UnknownStrategy(t *testing.T) {
	if _, err := buildFetcher("carrier-pigeon", "", slog.Default()); err == nil {
		t.Fatal("expected error for unknown fetcher")
	}
}

func TestBuildFetcher_FirecrawlRequiresKey(t *testing.T) {
	t.Setenv("FIRECRAWL_KEY", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", "")

	_, err := buildFetcher("firecrawl", "", slog.Default())
	if err == nil || !strings.Contains(err.Error(), "FIRECRAWL_KEY") {
		t.Fatalf("err = %v, want key-resolution failure", err)
	}
}

func TestBuildFetcher_Direct(t *testing.T) {
	f, err := buildFetcher("direct", "", slog.Default())
	if err != nil {
		t.Fatalf("buildFetcher: %v", err)
	}
	if f == nil {
		t.Fatal("nil fetcher")
	}
}

func TestBuildFetcher_DirectWithProxyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.txt")
	lines := "# upstream proxies\nhttp://10.0.0.1:8080\n\n10.0.0.2:3128\n"
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := buildFetcher("direct", path, slog.Default())
	if err != nil {
		t.Fatalf("buildFetcher: %v", err)
	}
	if f == nil {
		t.Fatal("nil fetcher")
	}
}

func TestBuildFetcher_MissingProxyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")
	if _, err := buildFetcher("direct", path, slog.Default()); err == nil {
		t.Fatal("expected error for unreadable proxy file")
	}
}

func TestOpenBackend_UnknownFormat(t *testing.T) {
	if _, err := openBackend("parquet", "out.parquet", false); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestOpenBackend_TruncateResetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.csv")
	if err := os.WriteFile(path, []byte("stale,data\n"), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := openBackend("csv", path, true)
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	defer b.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Errorf("file not reset, contents: %q", data)
	}
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"search"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error when --query is missing")
	}
}

func TestSearchCmd_RejectsUnknownFetcher(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"search", "-q", "코스피", "--fetcher", "telepathy"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown fetcher") {
		t.Fatalf("err = %v, want unknown fetcher error", err)
	}
}
