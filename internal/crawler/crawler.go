package crawler

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/linkaudit/linkhealth-scanner/internal/config"
	"github.com/linkaudit/linkhealth-scanner/internal/extractor"
	"github.com/linkaudit/linkhealth-scanner/internal/fetcher"
	"github.com/linkaudit/linkhealth-scanner/internal/frontier"
	"github.com/linkaudit/linkhealth-scanner/internal/metadata"
	"github.com/linkaudit/linkhealth-scanner/internal/normalize"
	"github.com/linkaudit/linkhealth-scanner/internal/report"
	"github.com/linkaudit/linkhealth-scanner/internal/sitemap"
	"github.com/linkaudit/linkhealth-scanner/internal/staleness"
)

/*
Engine Responsibilities
- Own frontier, queued, in_progress, visited, referrers, pages_crawled,
  and completed_requests exclusively from one coordinator goroutine
- Dispatch fetches to a bounded pool of max_workers goroutines
- Enforce the four ceilings (max_requests, max_pages, max_depth, max_workers)
- Never re-derive admission decisions once a URL has been queued

Workers touch none of the coordinator's state; they compute and return
immutable fetchOutcome values over a channel, exactly as spec.md §5
requires. The rate-limit gate lives inside the shared fetcher.Fetcher, not
here — it is the only cross-worker lock.
*/

// NewEngine builds an Engine wired to a real HTTPFetcher, the real HTML
// extractor, the real staleness detector, and the real sitemap loader.
func NewEngine(f fetcher.Fetcher, sink metadata.Sink, cfg config.CrawlConfig, httpClient *http.Client) *Engine {
	return &Engine{
		fetcher:      f,
		metadataSink: sink,
		cfg:          cfg,
		loadSitemap: func(ctx context.Context, startURL url.URL) map[string]url.URL {
			return sitemap.Load(ctx, httpClient, startURL, cfg.UserAgent())
		},
		extractLinks:    extractor.Extract,
		detectStaleness: staleness.Detect,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// NewEngineWithDeps builds an Engine with every collaborator injected,
// for tests that need to substitute the sitemap loader, clock, or
// extraction/staleness logic.
func NewEngineWithDeps(
	f fetcher.Fetcher,
	sink metadata.Sink,
	cfg config.CrawlConfig,
	loadSitemap func(ctx context.Context, startURL url.URL) map[string]url.URL,
	extractLinks func(base url.URL, body []byte) extractor.ExtractionResult,
	detectStaleness func(headers http.Header, body string, now time.Time, outdatedDays int) []string,
	now func() time.Time,
) *Engine {
	return &Engine{
		fetcher:         f,
		metadataSink:    sink,
		cfg:             cfg,
		loadSitemap:     loadSitemap,
		extractLinks:    extractLinks,
		detectStaleness: detectStaleness,
		now:             now,
	}
}

// Run executes one complete crawl and returns the assembled result. The
// engine never returns an error once the coordinator loop starts — every
// per-URL failure is absorbed into a LinkReport with status "error",
// exactly as spec.md §7 requires.
func (e *Engine) Run(ctx context.Context) (report.CrawlResult, error) {
	crawlStart := time.Now()
	startURL := e.cfg.StartURL()
	startKey := startURL.String()
	baseHost := startURL.Host

	frontierQueue := newFrontier()
	queued := frontier.NewSet[string]()
	inProgress := frontier.NewSet[string]()
	visited := frontier.NewSet[string]()
	referrers := make(map[string]map[string]struct{})

	frontierQueue.Enqueue(frontier.NewCrawlToken(startURL, 0))
	queued.Add(startKey)

	var sitemapURLs map[string]url.URL
	if e.cfg.CheckOrphans() {
		sitemapURLs = e.loadSitemap(ctx, startURL)
	}

	maxWorkers := e.cfg.MaxWorkers()
	jobs := make(chan fetchJob, maxWorkers)
	results := make(chan fetchOutcome, maxWorkers)

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go e.worker(ctx, jobs, results, &wg)
	}

	var reports []report.LinkReport
	pagesCrawled := 0
	completedRequests := 0
	totalErrors := 0
	maxRequests := e.cfg.MaxRequests()

	for {
		for frontierQueue.Size() > 0 &&
			inProgress.Size() < maxWorkers &&
			completedRequests+inProgress.Size() < maxRequests {

			token, ok := frontierQueue.Dequeue()
			if !ok {
				break
			}
			key := token.URL().String()
			queued.Remove(key)
			if visited.Contains(key) || inProgress.Contains(key) {
				continue
			}
			inProgress.Add(key)
			jobs <- fetchJob{url: token.URL(), depth: token.Depth()}
		}

		if inProgress.Size() == 0 {
			break
		}

		outcome := <-results
		key := outcome.job.url.String()
		inProgress.Remove(key)
		completedRequests++

		if outcome.transportErr != nil {
			totalErrors++
		}

		lr, links, eligibleForExpansion := e.buildReport(outcome, referrers[key])
		reports = append(reports, lr)
		visited.Add(key)

		if eligibleForExpansion && pagesCrawled < e.cfg.MaxPages() && outcome.job.depth < e.cfg.MaxDepth() {
			pagesCrawled++
			for _, outbound := range links.Links {
				if !e.cfg.IncludeExternal() && !normalize.SameOrigin(outbound, baseHost) {
					continue
				}
				outboundKey := outbound.String()
				if referrers[outboundKey] == nil {
					referrers[outboundKey] = make(map[string]struct{})
				}
				referrers[outboundKey][key] = struct{}{}

				if visited.Contains(outboundKey) || inProgress.Contains(outboundKey) || queued.Contains(outboundKey) {
					continue
				}
				frontierQueue.Enqueue(frontier.NewCrawlToken(outbound, outcome.job.depth+1))
				queued.Add(outboundKey)
			}
		}
	}

	close(jobs)
	wg.Wait()

	var sitemapKeys []string
	for key := range sitemapURLs {
		sitemapKeys = append(sitemapKeys, key)
	}

	result := report.BuildResult(reports, startKey, baseHost, sitemapKeys, visited, e.cfg.CheckOrphans())

	e.metadataSink.RecordFinalCrawlStats(metadata.NewFinalCrawlStats(
		pagesCrawled,
		completedRequests,
		totalErrors,
		time.Since(crawlStart).Milliseconds(),
	))

	return result, nil
}

// worker drains jobs until the coordinator closes the channel, returning
// one fetchOutcome per job. It touches no coordinator state.
func (e *Engine) worker(ctx context.Context, jobs <-chan fetchJob, results chan<- fetchOutcome, wg *sync.WaitGroup) {
	defer wg.Done()
	retryPolicy := fetcher.NewRetryPolicy(e.cfg.MaxRetries(), e.cfg.BackoffFactor(), e.cfg.RetryStatuses())

	for job := range jobs {
		param := fetcher.NewFetchParam(job.url, e.cfg.UserAgent())
		resp, err := e.fetcher.Fetch(ctx, job.depth, param, retryPolicy)
		results <- fetchOutcome{job: job, response: resp, transportErr: err}
	}
}

// buildReport turns one fetchOutcome into its LinkReport, returning the
// links extracted from an HTML body (if any) and whether the page is
// eligible for frontier expansion (HTML, status < 400).
func (e *Engine) buildReport(outcome fetchOutcome, refs map[string]struct{}) (report.LinkReport, extractor.ExtractionResult, bool) {
	lr := report.LinkReport{
		URL:        outcome.job.url.String(),
		Referrers:  sortedKeys(refs),
		LinksFound: []string{},
	}

	if outcome.transportErr != nil {
		lr.Status = report.StatusError
		lr.Issues = []string{outcome.transportErr.Error()}
		return lr, extractor.ExtractionResult{}, false
	}

	resp := outcome.response
	status, issue := report.ClassifyStatusCode(resp.StatusCode())
	lr.Status = status
	lr.StatusCode = report.IntPtr(resp.StatusCode())
	if issue != "" {
		lr.Issues = append(lr.Issues, issue)
	}
	if chainIssue, ok := report.RedirectChainIssue(resp.RedirectChain()); ok {
		lr.Issues = append(lr.Issues, chainIssue)
		finalURL := resp.URL().String()
		lr.RedirectedTo = report.StringPtr(finalURL)
	}

	contentType := resp.Headers().Get("Content-Type")
	if contentType != "" {
		lr.ContentType = report.StringPtr(contentType)
	}

	var links extractor.ExtractionResult
	if report.IsHTML(contentType) {
		lr.OutdatedSignals = e.detectStaleness(resp.Headers(), string(resp.Body()), e.now(), e.cfg.OutdatedDays())
		links = e.extractLinks(resp.URL(), resp.Body())
		lr.LinksFound = linksToStrings(links.Links)
	}

	eligibleForExpansion := report.IsHTML(contentType) && resp.StatusCode() < 400
	return lr, links, eligibleForExpansion
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func linksToStrings(links []url.URL) []string {
	out := make([]string, len(links))
	for i, u := range links {
		out[i] = u.String()
	}
	return out
}
