// Package extractor pulls outbound link candidates out of an HTML
// document body.
package extractor

import (
	"bytes"
	"net/url"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"github.com/linkaudit/linkhealth-scanner/internal/normalize"
)

// linkBearingTags maps each tag name this extractor inspects to the
// attribute carrying its URL.
var linkBearingTags = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"iframe": "src",
	"source": "src",
}

// Extract parses htmlBody and returns the deduplicated, sorted set of
// canonical URLs reachable from base through any a/link/img/script/iframe
// or source tag. goquery's underlying parser (golang.org/x/net/html) never
// returns a parse error for malformed markup — it recovers by inserting
// implied tags — so Extract has no error return: a best-effort partial
// result, including an empty one, is always a valid outcome.
func Extract(base url.URL, htmlBody []byte) ExtractionResult {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return ExtractionResult{}
	}

	seen := make(map[string]url.URL)
	for tag, attr := range linkBearingTags {
		doc.Find(tag + "[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			raw, exists := s.Attr(attr)
			if !exists {
				return
			}
			canonical, ok := normalize.Normalize(base, raw)
			if !ok {
				return
			}
			seen[canonical.String()] = canonical
		})
	}

	links := make([]url.URL, 0, len(seen))
	for _, u := range seen {
		links = append(links, u)
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].String() < links[j].String()
	})

	return ExtractionResult{Links: links}
}
