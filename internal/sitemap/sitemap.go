// Package sitemap loads a site's published sitemap.xml purely to build
// the set of URLs the crawl engine cross-references against what it
// actually visited — the sitemap itself is never crawled.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/linkaudit/linkhealth-scanner/internal/normalize"
	"github.com/linkaudit/linkhealth-scanner/pkg/failure"
)

type sitemapFetch struct {
	status int
	body   []byte
}

// Load builds {scheme}://{host}/sitemap.xml from startURL, issues a single
// GET respecting ctx's deadline (no retries), and on a 200 response
// collects the text of every element whose local name is "loc". Each
// candidate is normalized against startURL and kept only if it is
// same-origin. Any failure — transport error, non-200 status, or
// malformed XML — yields an empty set silently, exactly as the spec's
// "sitemap absent" case looks to the rest of the crawl.
func Load(ctx context.Context, client *http.Client, startURL url.URL, userAgent string) map[string]url.URL {
	result := make(map[string]url.URL)

	sitemapURL := url.URL{
		Scheme: startURL.Scheme,
		Host:   startURL.Host,
		Path:   "/sitemap.xml",
	}

	fetched, fetchErr := fetchOnce(ctx, client, sitemapURL, userAgent)
	if fetchErr != nil {
		return result
	}

	if fetched.status != http.StatusOK {
		return result
	}

	locs, err := extractLocs(fetched.body)
	if err != nil {
		return result
	}

	for _, raw := range locs {
		canonical, ok := normalize.Normalize(startURL, raw)
		if !ok {
			continue
		}
		if !normalize.SameOrigin(canonical, startURL.Host) {
			continue
		}
		result[canonical.String()] = canonical
	}

	return result
}

// fetchOnce issues a single GET for sitemapURL and reads its body fully.
// It never inspects status codes and never retries: a transport-level
// failure (dial, timeout, body read) is returned as a recoverable
// FetchError, which Load treats as an absent sitemap.
func fetchOnce(ctx context.Context, client *http.Client, sitemapURL url.URL, userAgent string) (sitemapFetch, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL.String(), nil)
	if err != nil {
		return sitemapFetch{}, &FetchError{Message: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return sitemapFetch{}, &FetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return sitemapFetch{}, &FetchError{Message: err.Error()}
	}

	return sitemapFetch{status: resp.StatusCode, body: body}, nil
}

// extractLocs streams the XML document and returns the character data of
// every element whose local name (ignoring any namespace prefix) is
// "loc", matching both plain sitemaps and sitemap-index documents.
func extractLocs(body []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var locs []string
	var inLoc bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing sitemap xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			inLoc = t.Name.Local == "loc"
		case xml.EndElement:
			if t.Name.Local == "loc" {
				inLoc = false
			}
		case xml.CharData:
			if inLoc {
				locs = append(locs, string(t))
			}
		}
	}

	return locs, nil
}
