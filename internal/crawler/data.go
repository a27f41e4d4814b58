// Package crawler is the Crawl Engine: the bounded, multi-worker frontier
// expander that owns the frontier, visited/queued/in-progress sets, and the
// referrer map exclusively from a single coordinator goroutine, dispatching
// fetches to a worker pool and assembling the final CrawlResult.
package crawler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/linkaudit/linkhealth-scanner/internal/config"
	"github.com/linkaudit/linkhealth-scanner/internal/extractor"
	"github.com/linkaudit/linkhealth-scanner/internal/fetcher"
	"github.com/linkaudit/linkhealth-scanner/internal/frontier"
	"github.com/linkaudit/linkhealth-scanner/internal/metadata"
)

// fetchJob is what the coordinator hands to a worker.
type fetchJob struct {
	url   url.URL
	depth int
}

// fetchOutcome is what a worker hands back to the coordinator. Exactly one
// of response/transportErr is meaningful, mirroring fetcher.Fetcher's
// (Response, failure.ClassifiedError) contract.
type fetchOutcome struct {
	job          fetchJob
	response     fetcher.Response
	transportErr error
}

// Engine runs one crawl per Run call. It holds no state between calls —
// all crawl-time data structures are local to Run, owned exclusively by
// its coordinator loop, exactly as spec.md §5 requires.
type Engine struct {
	fetcher         fetcher.Fetcher
	metadataSink    metadata.Sink
	cfg             config.CrawlConfig
	loadSitemap     func(ctx context.Context, startURL url.URL) map[string]url.URL
	extractLinks    func(base url.URL, body []byte) extractor.ExtractionResult
	detectStaleness func(headers http.Header, body string, now time.Time, outdatedDays int) []string
	now             func() time.Time
}

// newFrontier builds the empty FIFO queue the coordinator dequeues from.
// Entries are frontier.CrawlToken: a URL paired with the depth at which it
// was discovered, carrying no admission or scheduling policy of its own.
func newFrontier() *frontier.FIFOQueue[frontier.CrawlToken] {
	return frontier.NewFIFOQueue[frontier.CrawlToken]()
}
