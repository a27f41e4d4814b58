// Package normalize resolves raw HTML attribute values against a base URL
// and reduces the result to the crawler's canonical form, rejecting
// anything that cannot be a crawl target.
package normalize

import (
	"net/url"
	"strings"

	"github.com/linkaudit/linkhealth-scanner/pkg/urlutil"
)

// rejectedSchemePrefixes are pseudo-schemes that never name a fetchable
// resource. Checked case-insensitively against the raw attribute value,
// before any URL parsing happens, since "JavaScript:alert(1)" is rejected
// the same as "javascript:alert(1)".
var rejectedSchemePrefixes = []string{"mailto:", "tel:", "javascript:"}

// Normalize resolves raw against base and returns its canonical form. It
// returns ok=false when raw is empty, is a bare fragment ("#..."), carries
// a rejected pseudo-scheme, fails to parse, or resolves to a scheme other
// than http/https.
func Normalize(base url.URL, raw string) (url.URL, bool) {
	if raw == "" || strings.HasPrefix(raw, "#") {
		return url.URL{}, false
	}

	lowered := strings.ToLower(raw)
	for _, prefix := range rejectedSchemePrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return url.URL{}, false
		}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, false
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return url.URL{}, false
	}

	return urlutil.Canonicalize(*resolved), true
}

// SameOrigin reports whether u's host component (including port, as
// parsed) matches baseHost exactly. Comparison is case-sensitive: callers
// are expected to supply baseHost from the same parser that produced u,
// so no case folding or implicit port inference is performed.
func SameOrigin(u url.URL, baseHost string) bool {
	return u.Host == baseHost
}
