package crawler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/linkaudit/linkhealth-scanner/internal/config"
	"github.com/linkaudit/linkhealth-scanner/internal/crawler"
	"github.com/linkaudit/linkhealth-scanner/internal/fetcher"
	"github.com/linkaudit/linkhealth-scanner/internal/metadata"
	"github.com/linkaudit/linkhealth-scanner/internal/report"
	"github.com/linkaudit/linkhealth-scanner/pkg/limiter"
)

func newEngine(t *testing.T, cfg config.CrawlConfig) *crawler.Engine {
	t.Helper()
	gate := limiter.NewGate(0, 0, 1)
	f := fetcher.NewHTTPFetcher(metadata.NoopSink{}, gate, cfg.UserAgent(), cfg.Timeout(), http.DefaultTransport)
	return crawler.NewEngine(f, metadata.NoopSink{}, cfg, &http.Client{Timeout: cfg.Timeout()})
}

func buildConfig(t *testing.T, startURL string) config.CrawlConfig {
	t.Helper()
	u, err := url.Parse(startURL)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", startURL, err)
	}
	cfg, err := config.WithDefault(*u).
		WithMaxRetries(0).
		WithBackoffFactor(0).
		WithCheckOrphans(false).
		Build()
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	return cfg
}

// TestRun_SinglePageNoLinks covers spec.md §8's first scenario: a start
// page with no outbound links produces exactly one report with no
// referrers and no links found.
func TestRun_SinglePageNoLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body>no links here</body></html>`))
	}))
	defer srv.Close()

	cfg := buildConfig(t, srv.URL)
	e := newEngine(t, cfg)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Reports) != 1 {
		t.Fatalf("Reports = %d, want 1", len(result.Reports))
	}
	if result.Reports[0].Status != report.StatusOK {
		t.Errorf("Status = %q, want %q", result.Reports[0].Status, report.StatusOK)
	}
	if len(result.Reports[0].Referrers) != 0 {
		t.Errorf("Referrers = %v, want empty", result.Reports[0].Referrers)
	}
}

// TestRun_BrokenChildLink covers the broken-link scenario: a child 404
// is reported with a "Client error" issue and its referrer recorded.
func TestRun_BrokenChildLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body><a href="/missing">broken</a></body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := buildConfig(t, srv.URL)
	e := newEngine(t, cfg)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Reports) != 2 {
		t.Fatalf("Reports = %d, want 2", len(result.Reports))
	}

	byPath := reportsByPath(result.Reports)
	broken, ok := byPath["/missing"]
	if !ok {
		t.Fatal("expected a report for /missing")
	}
	if broken.Status != report.StatusBroken {
		t.Errorf("Status = %q, want %q", broken.Status, report.StatusBroken)
	}
	if len(broken.Issues) != 1 || broken.Issues[0] != "Client error" {
		t.Errorf("Issues = %v, want [Client error]", broken.Issues)
	}
	if len(broken.Referrers) != 1 {
		t.Errorf("Referrers = %v, want exactly one referrer", broken.Referrers)
	}
}

// TestRun_RedirectChainRecorded covers the redirect scenario: the report
// carries every hop's status code and a redirected_to pointing at the
// final destination.
func TestRun_RedirectChainRecorded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body><a href="/old">moved</a></body></html>`))
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := buildConfig(t, srv.URL)
	e := newEngine(t, cfg)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byPath := reportsByPath(result.Reports)
	redirected, ok := byPath["/old"]
	if !ok {
		t.Fatal("expected a report for /old")
	}
	if redirected.RedirectedTo == nil || *redirected.RedirectedTo != srv.URL+"/new" {
		t.Errorf("RedirectedTo = %v, want %s/new", redirected.RedirectedTo, srv.URL)
	}
	foundChainIssue := false
	for _, issue := range redirected.Issues {
		if issue == "Redirect chain 301 -> 200" {
			foundChainIssue = true
		}
	}
	if !foundChainIssue {
		t.Errorf("Issues = %v, want a redirect chain issue", redirected.Issues)
	}
}

// TestRun_OutdatedSignalDetected covers the staleness scenario: a stale
// phrase in the body surfaces as an outdated_signal.
func TestRun_OutdatedSignalDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body>This page is under construction.</body></html>`))
	}))
	defer srv.Close()

	cfg := buildConfig(t, srv.URL)
	e := newEngine(t, cfg)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Reports) != 1 {
		t.Fatalf("Reports = %d, want 1", len(result.Reports))
	}
	if len(result.Reports[0].OutdatedSignals) == 0 {
		t.Error("expected at least one outdated signal")
	}
	if result.Summary.Outdated != 1 {
		t.Errorf("Summary.Outdated = %d, want 1", result.Summary.Outdated)
	}
}

// TestRun_ExternalLinksExcludedByDefault covers the external-link
// scenario: a cross-origin link is neither fetched nor reported when
// include_external is left at its false default.
func TestRun_ExternalLinksExcludedByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body><a href="https://other.example/page">external</a></body></html>`))
	}))
	defer srv.Close()

	cfg := buildConfig(t, srv.URL)
	e := newEngine(t, cfg)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Reports) != 1 {
		t.Fatalf("Reports = %d, want 1 (external link must not be fetched)", len(result.Reports))
	}
	if len(result.Reports[0].LinksFound) != 1 {
		t.Errorf("LinksFound = %v, want the external link still listed on its source page", result.Reports[0].LinksFound)
	}
}

// TestRun_SitemapOrphanDetected covers orphan detection: a URL present in
// sitemap.xml but never linked from the crawled pages surfaces in
// sitemap_only_links.
func TestRun_SitemapOrphanDetected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html></html>`))
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<?xml version="1.0"?><urlset>
			<url><loc>http://` + r.Host + `/orphaned</loc></url>
		</urlset>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", srv.URL, err)
	}
	cfg, err := config.WithDefault(*u).
		WithMaxRetries(0).
		WithBackoffFactor(0).
		WithCheckOrphans(true).
		Build()
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	e := newEngine(t, cfg)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	foundOrphan := false
	for _, u := range result.SitemapOnlyLinks {
		if u == srv.URL+"/orphaned" {
			foundOrphan = true
		}
	}
	if !foundOrphan {
		t.Errorf("SitemapOnlyLinks = %v, want it to contain %s/orphaned", result.SitemapOnlyLinks, srv.URL)
	}
}

// TestRun_MaxDepthStopsExpansion verifies the depth ceiling: a chain of
// pages longer than max_depth is truncated rather than fully walked.
func TestRun_MaxDepthStopsExpansion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body><a href="/b">next</a></body></html>`))
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body><a href="/c">next</a></body></html>`))
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	u, err := url.Parse(srv.URL + "/a")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	cfg, err := config.WithDefault(*u).
		WithMaxRetries(0).
		WithBackoffFactor(0).
		WithCheckOrphans(false).
		WithMaxDepth(1).
		Build()
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	e := newEngine(t, cfg)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byPath := reportsByPath(result.Reports)
	if _, ok := byPath["/c"]; ok {
		t.Errorf("expected /c to never be fetched at max_depth=1, reports: %v", byPath)
	}
}

func reportsByPath(reports []report.LinkReport) map[string]report.LinkReport {
	out := make(map[string]report.LinkReport, len(reports))
	for _, r := range reports {
		u, err := url.Parse(r.URL)
		if err != nil {
			continue
		}
		out[u.Path] = r
	}
	return out
}
