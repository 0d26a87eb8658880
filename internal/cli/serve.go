package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FranksOps/newshound/internal/filter"
	"github.com/FranksOps/newshound/internal/metrics"
	"github.com/FranksOps/newshound/internal/pipeline"
	"github.com/FranksOps/newshound/internal/server"
	"github.com/FranksOps/newshound/pkg/ratelimit"
)

type serveOptions struct {
	addr        string
	fetcher     string
	maxPages    int
	delay       time.Duration
	proxyFile   string
	metricsAddr string
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve headline searches over HTTP",
		Long:  "Runs an HTTP server exposing GET /api/search?q=<query>&limit=<n> backed by a live collection run per request, plus GET /healthz.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", ":8080", "listen address")
	f.StringVar(&opts.fetcher, "fetcher", "firecrawl", "fetch strategy, direct or firecrawl")
	f.IntVar(&opts.maxPages, "max-pages", pipeline.DefaultMaxPages, "hard cap on result pages walked per request")
	f.DurationVar(&opts.delay, "delay", pipeline.DefaultPageDelay, "pause between page fetches")
	f.StringVar(&opts.proxyFile, "proxy-file", "", "file with one proxy URL per line (direct fetcher only)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	logger := slog.Default()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, err := buildFetcher(opts.fetcher, opts.proxyFile, logger)
	if err != nil {
		return err
	}
	collector, err := pipeline.New(pipeline.Config{
		Fetcher: fetcher,
		Filters: []filter.TitleFilter{
			filter.ByKeywords(nil),
			filter.ByTokenOverlap(0),
		},
		Pacer:    ratelimit.NewPacer(opts.delay, 0.1),
		MaxPages: opts.maxPages,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		srv := metrics.Start(opts.metricsAddr)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Stop(stopCtx)
		}()
	}

	api, err := server.New(server.Config{
		Addr:     opts.addr,
		Provider: collector,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return api.Run(ctx)
}
