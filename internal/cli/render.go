package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/linkaudit/linkhealth-scanner/internal/report"
)

// PrintJSON writes result as indented JSON, matching the wire shape
// spec.md §6 documents for external consumers.
func PrintJSON(w io.Writer, result report.CrawlResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// PrintText writes the default human-readable summary: an aggregate
// count table followed by broken-link, redirect, outdated, and orphan
// sections, each skipped when empty.
func PrintText(w io.Writer, result report.CrawlResult) {
	fmt.Fprintln(w, "\nLink Health Scanner Results")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Total: %d\n", result.Summary.Total)
	fmt.Fprintf(w, "OK: %d\n", result.Summary.OK)
	fmt.Fprintf(w, "Broken: %d\n", result.Summary.Broken)
	fmt.Fprintf(w, "Errors: %d\n", result.Summary.Error)
	fmt.Fprintf(w, "Redirects: %d\n", result.Summary.Redirect)
	fmt.Fprintf(w, "Server errors: %d\n", result.Summary.ServerError)
	fmt.Fprintf(w, "Outdated: %d\n", result.Summary.Outdated)
	fmt.Fprintf(w, "Unused: %d\n", result.Summary.Unused)

	printBrokenLinks(w, result.Reports)
	printRedirects(w, result.Reports)
	printOutdated(w, result.Reports)
	printOrphans(w, result.UnusedLinks, result.SitemapOnlyLinks)
}

func printBrokenLinks(w io.Writer, reports []report.LinkReport) {
	var broken []report.LinkReport
	for _, r := range reports {
		if r.Status == report.StatusBroken || r.Status == report.StatusError || r.Status == report.StatusServerError {
			broken = append(broken, r)
		}
	}
	if len(broken) == 0 {
		return
	}

	fmt.Fprintln(w, "\n── Broken Links ──")
	for _, r := range broken {
		fmt.Fprintf(w, "✗ %s\n", r.URL)
		if len(r.Referrers) > 0 {
			sources := r.Referrers
			suffix := ""
			if len(sources) > 3 {
				sources = sources[:3]
				suffix = ", ..."
			}
			fmt.Fprintf(w, "  Found on: %s%s\n", strings.Join(sources, ", "), suffix)
		}
		if len(r.Issues) > 0 {
			fmt.Fprintf(w, "  Issue: %s\n", strings.Join(r.Issues, ", "))
		}
	}
}

func printRedirects(w io.Writer, reports []report.LinkReport) {
	var redirects []report.LinkReport
	for _, r := range reports {
		if r.RedirectedTo != nil {
			redirects = append(redirects, r)
		}
	}
	if len(redirects) == 0 {
		return
	}

	fmt.Fprintln(w, "\n── Redirects ──")
	for _, r := range redirects {
		fmt.Fprintf(w, "↻ %s\n", r.URL)
		fmt.Fprintf(w, "  → %s\n", *r.RedirectedTo)
	}
}

func printOutdated(w io.Writer, reports []report.LinkReport) {
	var outdated []report.LinkReport
	for _, r := range reports {
		if len(r.OutdatedSignals) > 0 {
			outdated = append(outdated, r)
		}
	}
	if len(outdated) == 0 {
		return
	}

	fmt.Fprintln(w, "\n── Potentially Outdated ──")
	for _, r := range outdated {
		fmt.Fprintf(w, "⌚ %s\n", r.URL)
		for _, signal := range r.OutdatedSignals {
			fmt.Fprintf(w, "  • %s\n", signal)
		}
	}
}

func printOrphans(w io.Writer, unusedLinks, sitemapOnlyLinks []string) {
	if len(unusedLinks) == 0 && len(sitemapOnlyLinks) == 0 {
		return
	}

	fmt.Fprintln(w, "\n── Unused / Orphan Links ──")
	for _, u := range unusedLinks {
		fmt.Fprintf(w, "Ø %s\n", u)
	}
	for _, u := range sitemapOnlyLinks {
		fmt.Fprintf(w, "Ø %s (sitemap only)\n", u)
	}
}
