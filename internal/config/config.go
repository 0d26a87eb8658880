// Package config resolves the Firecrawl API credential from its two
// sources: the FIRECRAWL_KEY environment variable, then the Cursor MCP
// config file. Resolution is explicit and ordered; no other ambient
// state is consulted.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// KeySource names where a credential was found.
type KeySource string

const (
	SourceEnv       KeySource = "env"
	SourceMCPConfig KeySource = "mcp-config"
	SourceNone      KeySource = "none"
)

// Credential is the typed result of key resolution.
type Credential struct {
	Key    string
	Source KeySource
}

// Found reports whether a usable key was resolved.
func (c Credential) Found() bool {
	return c.Key != ""
}

// mcpServerName is the Firecrawl entry in Cursor's MCP config.
const mcpServerName = "mcp-server-firecrawl"

// mcpConfig mirrors the subset of ~/.cursor/mcp.json we read: the args
// array of the Firecrawl server, where the key follows a --key flag.
type mcpConfig struct {
	MCPServers map[string]struct {
		Args []string `json:"args"`
	} `json:"mcpServers"`
}

// DefaultConfigPath returns the Cursor MCP config location under the
// user's home/profile directory.
func DefaultConfigPath() string {
	home := os.Getenv("USERPROFILE")
	if home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".cursor", "mcp.json")
}

// ResolveFirecrawlKey resolves the API key from the standard sources.
func ResolveFirecrawlKey() Credential {
	return ResolveFirecrawlKeyFrom(os.Getenv("FIRECRAWL_KEY"), DefaultConfigPath())
}

// ResolveFirecrawlKeyFrom resolves the key from an explicit env value
// and config path, in that order. Split out for tests.
func ResolveFirecrawlKeyFrom(envValue, configPath string) Credential {
	if key := strings.TrimSpace(envValue); key != "" {
		return Credential{Key: key, Source: SourceEnv}
	}

	if key := keyFromMCPConfig(configPath); key != "" {
		return Credential{Key: key, Source: SourceMCPConfig}
	}

	return Credential{Source: SourceNone}
}

// keyFromMCPConfig reads the value following the --key flag in the
// Firecrawl server's args. Any read or parse failure yields "", so a
// malformed config degrades to "not found" rather than an error.
func keyFromMCPConfig(path string) string {
	if path == "" {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var cfg mcpConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ""
	}

	server, ok := cfg.MCPServers[mcpServerName]
	if !ok {
		return ""
	}

	for i, arg := range server.Args {
		if arg == "--key" && i+1 < len(server.Args) {
			return strings.TrimSpace(server.Args[i+1])
		}
	}
	return ""
}
