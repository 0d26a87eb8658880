package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/FranksOps/newshound/internal/config"
	"github.com/FranksOps/newshound/internal/scraper"
	"github.com/FranksOps/newshound/internal/storage"
	"github.com/FranksOps/newshound/internal/storage/csvbackend"
	"github.com/FranksOps/newshound/internal/storage/jsonbackend"
	"github.com/FranksOps/newshound/internal/storage/postgres"
	"github.com/FranksOps/newshound/internal/storage/sqlite"
	"github.com/FranksOps/newshound/pkg/proxy"
)

// buildFetcher constructs the named fetch strategy wrapped in the
// rate-limit retry layer. The firecrawl strategy fails fast here when no
// API key can be resolved, before any page is requested.
func buildFetcher(name, proxyFile string, logger *slog.Logger) (scraper.Fetcher, error) {
	var inner scraper.Fetcher
	switch name {
	case "direct":
		var pool *proxy.Pool
		if proxyFile != "" {
			pool = proxy.NewPool(proxy.Config{})
			if err := pool.LoadFile(proxyFile); err != nil {
				return nil, fmt.Errorf("load proxy file: %w", err)
			}
			logger.Info("proxy pool loaded", "proxies", pool.Size())
		}
		direct, err := scraper.NewDirect(scraper.DirectConfig{ProxyPool: pool})
		if err != nil {
			return nil, err
		}
		inner = direct
	case "firecrawl":
		cred := config.ResolveFirecrawlKey()
		if !cred.Found() {
			return nil, fmt.Errorf("no Firecrawl API key: set FIRECRAWL_KEY or configure %s", config.DefaultConfigPath())
		}
		logger.Debug("firecrawl key resolved", "source", cred.Source)
		fc, err := scraper.NewFirecrawl(scraper.FirecrawlConfig{APIKey: cred.Key})
		if err != nil {
			return nil, err
		}
		inner = fc
	default:
		return nil, fmt.Errorf("unknown fetcher %q (want direct or firecrawl)", name)
	}
	return scraper.NewRetry(inner, scraper.RetryConfig{}, logger), nil
}

// openBackend opens the output backend named by format. File formats
// append by default; passing truncate first resets the target so a run
// starts from an empty file.
func openBackend(format, target string, truncate bool) (storage.Backend, error) {
	switch format {
	case "csv", "json":
		if truncate {
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reset %s: %w", target, err)
			}
		}
		if format == "csv" {
			return csvbackend.New(target)
		}
		return jsonbackend.New(target)
	case "sqlite":
		return sqlite.New(target)
	case "postgres":
		return postgres.New(context.Background(), target)
	default:
		return nil, fmt.Errorf("unknown output format %q (want csv, json, sqlite, or postgres)", format)
	}
}
