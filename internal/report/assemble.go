package report

import (
	"net/url"
	"sort"

	"github.com/linkaudit/linkhealth-scanner/internal/normalize"
)

// BuildResult assembles the final CrawlResult from the reports gathered
// during a run. Reports are sorted by URL for a deterministic output order
// (spec.md §8 leaves report ordering unspecified beyond this). Orphan sets
// are computed only when checkOrphans is true, per spec.md §4.7.
func BuildResult(reports []LinkReport, startURL string, baseHost string, sitemapURLs []string, visited map[string]struct{}, checkOrphans bool) CrawlResult {
	sortedReports := make([]LinkReport, len(reports))
	copy(sortedReports, reports)
	sort.Slice(sortedReports, func(i, j int) bool { return sortedReports[i].URL < sortedReports[j].URL })

	var unusedLinks, sitemapOnlyLinks []string
	if checkOrphans {
		for _, r := range sortedReports {
			if r.URL == startURL {
				continue
			}
			if !sameOriginString(r.URL, baseHost) {
				continue
			}
			if len(r.Referrers) == 0 {
				unusedLinks = append(unusedLinks, r.URL)
			}
		}
		for _, u := range sitemapURLs {
			if !sameOriginString(u, baseHost) {
				continue
			}
			if _, ok := visited[u]; ok {
				continue
			}
			sitemapOnlyLinks = append(sitemapOnlyLinks, u)
		}
		sort.Strings(unusedLinks)
		sort.Strings(sitemapOnlyLinks)
	}

	return CrawlResult{
		Summary:          BuildSummary(sortedReports, len(unusedLinks)+len(sitemapOnlyLinks), checkOrphans),
		Reports:          sortedReports,
		UnusedLinks:      unusedLinks,
		SitemapOnlyLinks: sitemapOnlyLinks,
	}
}

// BuildSummary computes the per-status counts defined in spec.md §4.7.
// unused is the already-computed |unused_links| + |sitemap_only_links|; it
// is recorded only when checkOrphans is true.
func BuildSummary(reports []LinkReport, unused int, checkOrphans bool) Summary {
	summary := Summary{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case StatusOK:
			summary.OK++
		case StatusBroken:
			summary.Broken++
		case StatusServerError:
			summary.ServerError++
		case StatusRedirect:
			summary.Redirect++
		case StatusError:
			summary.Error++
		}
		if len(r.OutdatedSignals) > 0 {
			summary.Outdated++
		}
	}
	if checkOrphans {
		summary.Unused = unused
	}
	return summary
}

func sameOriginString(raw, baseHost string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return normalize.SameOrigin(*u, baseHost)
}
