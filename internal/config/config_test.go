package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcp.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

const validConfig = `{
  "mcpServers": {
    "mcp-server-firecrawl": {
      "args": ["-y", "firecrawl-mcp", "--key", "fc-test-key-123"]
    }
  }
}`

func TestResolve_EnvWins(t *testing.T) {
	path := writeConfig(t, validConfig)

	cred := ResolveFirecrawlKeyFrom("fc-env-key", path)
	if !cred.Found() {
		t.Fatal("expected credential to be found")
	}
	if cred.Key != "fc-env-key" || cred.Source != SourceEnv {
		t.Errorf("env must take precedence, got %+v", cred)
	}
}

func TestResolve_EnvWhitespaceIgnored(t *testing.T) {
	cred := ResolveFirecrawlKeyFrom("   ", "")
	if cred.Found() {
		t.Errorf("whitespace-only env value must not resolve, got %+v", cred)
	}
}

func TestResolve_ConfigFileFallback(t *testing.T) {
	path := writeConfig(t, validConfig)

	cred := ResolveFirecrawlKeyFrom("", path)
	if !cred.Found() {
		t.Fatal("expected credential from config file")
	}
	if cred.Key != "fc-test-key-123" || cred.Source != SourceMCPConfig {
		t.Errorf("unexpected credential: %+v", cred)
	}
}

func TestResolve_MissingEverywhere(t *testing.T) {
	cred := ResolveFirecrawlKeyFrom("", filepath.Join(t.TempDir(), "nope.json"))
	if cred.Found() {
		t.Errorf("expected no credential, got %+v", cred)
	}
	if cred.Source != SourceNone {
		t.Errorf("expected SourceNone, got %s", cred.Source)
	}
}

func TestResolve_MalformedConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{not json`},
		{"wrong server name", `{"mcpServers":{"other-server":{"args":["--key","x"]}}}`},
		{"key flag without value", `{"mcpServers":{"mcp-server-firecrawl":{"args":["--key"]}}}`},
		{"no key flag", `{"mcpServers":{"mcp-server-firecrawl":{"args":["-y","firecrawl-mcp"]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if cred := ResolveFirecrawlKeyFrom("", path); cred.Found() {
				t.Errorf("expected no credential, got %+v", cred)
			}
		})
	}
}
