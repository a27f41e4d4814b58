package report_test

import (
	"testing"

	"github.com/linkaudit/linkhealth-scanner/internal/report"
)

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		code       int
		wantStatus string
		wantIssue  string
	}{
		{200, report.StatusOK, ""},
		{204, report.StatusOK, ""},
		{301, report.StatusRedirect, ""},
		{404, report.StatusBroken, "Client error"},
		{500, report.StatusServerError, "Server error"},
		{503, report.StatusServerError, "Server error"},
		{0, report.StatusUnknown, ""},
	}
	for _, tt := range tests {
		status, issue := report.ClassifyStatusCode(tt.code)
		if status != tt.wantStatus || issue != tt.wantIssue {
			t.Errorf("ClassifyStatusCode(%d) = (%q, %q), want (%q, %q)", tt.code, status, issue, tt.wantStatus, tt.wantIssue)
		}
	}
}

func TestRedirectChainIssue(t *testing.T) {
	issue, ok := report.RedirectChainIssue([]int{301, 200})
	if !ok {
		t.Fatal("expected ok=true for a two-hop chain")
	}
	if issue != "Redirect chain 301 -> 200" {
		t.Errorf("issue = %q, want %q", issue, "Redirect chain 301 -> 200")
	}

	if _, ok := report.RedirectChainIssue([]int{200}); ok {
		t.Error("expected ok=false for a single-hop (non-redirected) chain")
	}
}

func TestIsHTML(t *testing.T) {
	if !report.IsHTML("text/html; charset=utf-8") {
		t.Error("expected text/html with charset to be recognized as HTML")
	}
	if report.IsHTML("application/json") {
		t.Error("expected application/json to not be recognized as HTML")
	}
}

func TestBuildSummary_CountsEachStatusOnce(t *testing.T) {
	reports := []report.LinkReport{
		{URL: "https://example.test/", Status: report.StatusOK},
		{URL: "https://example.test/a", Status: report.StatusBroken},
		{URL: "https://example.test/b", Status: report.StatusServerError},
		{URL: "https://example.test/c", Status: report.StatusRedirect},
		{URL: "https://example.test/d", Status: report.StatusError},
		{URL: "https://example.test/e", Status: report.StatusOK, OutdatedSignals: []string{"stale"}},
	}
	summary := report.BuildSummary(reports, 2, true)

	if summary.Total != 6 {
		t.Errorf("Total = %d, want 6", summary.Total)
	}
	if summary.OK != 2 {
		t.Errorf("OK = %d, want 2", summary.OK)
	}
	if summary.Broken != 1 || summary.ServerError != 1 || summary.Redirect != 1 || summary.Error != 1 {
		t.Errorf("unexpected per-status counts: %+v", summary)
	}
	if summary.Outdated != 1 {
		t.Errorf("Outdated = %d, want 1", summary.Outdated)
	}
	if summary.Unused != 2 {
		t.Errorf("Unused = %d, want 2", summary.Unused)
	}
}

func TestBuildSummary_UnusedZeroWhenOrphansDisabled(t *testing.T) {
	summary := report.BuildSummary(nil, 5, false)
	if summary.Unused != 0 {
		t.Errorf("Unused = %d, want 0 when checkOrphans is false", summary.Unused)
	}
}

func TestBuildResult_ComputesOrphanSets(t *testing.T) {
	reports := []report.LinkReport{
		{URL: "https://example.test/", Status: report.StatusOK, Referrers: []string{}},
		{URL: "https://example.test/seen", Status: report.StatusOK, Referrers: []string{"https://example.test/"}},
		{URL: "https://example.test/orphaned", Status: report.StatusOK, Referrers: []string{}},
	}
	visited := map[string]struct{}{
		"https://example.test/":          {},
		"https://example.test/seen":      {},
		"https://example.test/orphaned":  {},
	}
	sitemapURLs := []string{"https://example.test/seen", "https://example.test/unvisited"}

	result := report.BuildResult(reports, "https://example.test/", "example.test", sitemapURLs, visited, true)

	if len(result.UnusedLinks) != 1 || result.UnusedLinks[0] != "https://example.test/orphaned" {
		t.Errorf("UnusedLinks = %v, want [https://example.test/orphaned]", result.UnusedLinks)
	}
	if len(result.SitemapOnlyLinks) != 1 || result.SitemapOnlyLinks[0] != "https://example.test/unvisited" {
		t.Errorf("SitemapOnlyLinks = %v, want [https://example.test/unvisited]", result.SitemapOnlyLinks)
	}
	if result.Summary.Unused != 2 {
		t.Errorf("Summary.Unused = %d, want 2", result.Summary.Unused)
	}
}

func TestBuildResult_SkipsOrphanComputationWhenDisabled(t *testing.T) {
	reports := []report.LinkReport{
		{URL: "https://example.test/orphaned", Status: report.StatusOK, Referrers: []string{}},
	}
	result := report.BuildResult(reports, "https://example.test/", "example.test", nil, nil, false)
	if result.UnusedLinks != nil || result.SitemapOnlyLinks != nil {
		t.Errorf("expected nil orphan sets when checkOrphans is false, got %v / %v", result.UnusedLinks, result.SitemapOnlyLinks)
	}
}
