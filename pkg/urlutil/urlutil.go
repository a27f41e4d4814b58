package urlutil

import "net/url"

// Canonicalize applies the canonical-form rules shared by every component
// that compares or stores URLs: strip the fragment, drop every trailing
// slash from the path (a bare host keeps no trailing slash at all), and
// drop an empty "?" query marker. Scheme, host and a non-empty query are
// left untouched — case and port are preserved exactly as parsed (url.Parse
// already lower-cases the scheme), and query strings are never reordered
// or folded.
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
//   - Context-free: does not depend on crawl history
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.ForceQuery = false

	canonical.Path = stripTrailingSlash(canonical.Path)

	return canonical
}

// stripTrailingSlash removes trailing slashes from a path, including the
// single slash of a bare root path — a bare host keeps no trailing slash
// at all.
func stripTrailingSlash(path string) string {
	for len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
