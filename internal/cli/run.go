package cmd

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/linkaudit/linkhealth-scanner/internal/config"
	"github.com/linkaudit/linkhealth-scanner/internal/crawler"
	"github.com/linkaudit/linkhealth-scanner/internal/fetcher"
	"github.com/linkaudit/linkhealth-scanner/internal/metadata"
	"github.com/linkaudit/linkhealth-scanner/internal/report"
	"github.com/linkaudit/linkhealth-scanner/pkg/limiter"
)

// RunCrawl wires a real HTTPFetcher, rate gate, and logfmt-encoding
// metadata sink around a crawl engine and runs one crawl to completion.
// Observability events go to stderr so stdout stays clean for --json.
func RunCrawl(ctx context.Context, cfg config.CrawlConfig) (report.CrawlResult, error) {
	sink := metadata.NewRecorder(os.Stderr)

	var baseDelay, jitter time.Duration
	if cfg.RateLimit() > 0 {
		baseDelay = time.Duration(float64(time.Second) / cfg.RateLimit())
	}

	gate := limiter.NewGate(baseDelay, jitter, 1)

	// One connection pool, sized to ~2x the worker count, shared by every
	// HTTP client this run makes — the page fetcher's and the sitemap
	// loader's alike — rather than each opening its own unbounded pool.
	poolSize := cfg.MaxWorkers() * 2
	transport := &http.Transport{
		MaxIdleConnsPerHost: poolSize,
		MaxConnsPerHost:     poolSize,
	}

	httpClient := &http.Client{Timeout: cfg.Timeout(), Transport: transport}
	f := fetcher.NewHTTPFetcher(sink, gate, cfg.UserAgent(), cfg.Timeout(), transport)

	engine := crawler.NewEngine(f, sink, cfg, httpClient)
	return engine.Run(ctx)
}
