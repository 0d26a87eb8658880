package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FranksOps/newshound/internal/filter"
	"github.com/FranksOps/newshound/internal/metrics"
	"github.com/FranksOps/newshound/internal/pipeline"
	"github.com/FranksOps/newshound/internal/report"
	"github.com/FranksOps/newshound/internal/scraper"
	"github.com/FranksOps/newshound/internal/storage"
	"github.com/FranksOps/newshound/pkg/ratelimit"
)

type searchOptions struct {
	query         string
	limit         int
	out           string
	appendOut     bool
	format        string
	fetcher       string
	maxPages      int
	delay         time.Duration
	proxyFile     string
	respectRobots bool
	noFilter      bool
	reportPath    string
	metricsAddr   string
}

func newSearchCmd() *cobra.Command {
	opts := searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Collect headlines for a query",
		Example: `  newshound search -q "전기차 화재" -n 30
  newshound search -q 반도체 --fetcher direct --out titles.csv --append`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.query, "query", "q", "", "search query (required)")
	f.IntVarP(&opts.limit, "limit", "n", 10, "unique headlines to collect, capped at 100")
	f.StringVarP(&opts.out, "out", "o", "", "output target: file path for csv/json, DSN for sqlite/postgres")
	f.BoolVar(&opts.appendOut, "append", false, "append to an existing output file instead of starting fresh")
	f.StringVar(&opts.format, "format", "csv", "output format, one of csv, json, sqlite, postgres")
	f.StringVar(&opts.fetcher, "fetcher", "firecrawl", "fetch strategy, direct or firecrawl")
	f.IntVar(&opts.maxPages, "max-pages", pipeline.DefaultMaxPages, "hard cap on result pages walked")
	f.DurationVar(&opts.delay, "delay", pipeline.DefaultPageDelay, "pause between page fetches")
	f.StringVar(&opts.proxyFile, "proxy-file", "", "file with one proxy URL per line (direct fetcher only)")
	f.BoolVar(&opts.respectRobots, "respect-robots", false, "check robots.txt before fetching")
	f.BoolVar(&opts.noFilter, "no-filter", false, "disable the keyword and near-duplicate filters")
	f.StringVar(&opts.reportPath, "report", "", "write the run summary as JSON to this path")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address for the run")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runSearch(cmd *cobra.Command, opts searchOptions) error {
	logger := slog.Default()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, err := buildFetcher(opts.fetcher, opts.proxyFile, logger)
	if err != nil {
		return err
	}

	var backend storage.Backend
	if opts.out != "" {
		backend, err = openBackend(opts.format, opts.out, !opts.appendOut)
		if err != nil {
			return err
		}
		defer backend.Close()
	}

	if opts.metricsAddr != "" {
		srv := metrics.Start(opts.metricsAddr)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Stop(stopCtx)
		}()
	}

	var robots *scraper.RobotsAuditor
	if opts.respectRobots {
		robots = scraper.NewRobotsAuditor(fetcher, logger)
	}

	var filters []filter.TitleFilter
	if !opts.noFilter {
		filters = []filter.TitleFilter{
			filter.ByKeywords(nil),
			filter.ByQuerySuffix(opts.query),
			filter.ByTokenOverlap(0),
		}
	}

	collector, err := pipeline.New(pipeline.Config{
		Fetcher:  fetcher,
		Filters:  filters,
		Pacer:    ratelimit.NewPacer(opts.delay, 0.1),
		MaxPages: opts.maxPages,
		Robots:   robots,
		Backend:  backend,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	items, summary, runErr := collector.Run(ctx, opts.query, opts.limit)

	for _, item := range items {
		fmt.Fprintln(cmd.OutOrStdout(), item.Title)
	}
	if err := report.WriteText(cmd.ErrOrStderr(), summary); err != nil {
		logger.Warn("write summary", "error", err)
	}
	if opts.reportPath != "" {
		if err := writeReportFile(opts.reportPath, summary); err != nil {
			logger.Warn("write report file", "error", err)
		}
	}

	return runErr
}

func writeReportFile(path string, summary report.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteJSON(f, summary)
}
