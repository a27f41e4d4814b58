package report

import (
	"strconv"
	"strings"
)

// ClassifyStatusCode maps a final HTTP status code to a LinkReport status
// and its corresponding issue string, per spec.md §4.4.
func ClassifyStatusCode(statusCode int) (status string, issue string) {
	switch {
	case statusCode >= 500:
		return StatusServerError, "Server error"
	case statusCode >= 400:
		return StatusBroken, "Client error"
	case statusCode >= 300:
		return StatusRedirect, ""
	case statusCode >= 200:
		return StatusOK, ""
	default:
		return StatusUnknown, ""
	}
}

// RedirectChainIssue describes a multi-hop redirect chain as
// "Redirect chain c1 -> c2 -> ... -> final". It returns ok=false when the
// chain has fewer than two hops (no redirect occurred).
func RedirectChainIssue(chain []int) (issue string, ok bool) {
	if len(chain) < 2 {
		return "", false
	}
	parts := make([]string, len(chain))
	for i, code := range chain {
		parts[i] = strconv.Itoa(code)
	}
	return "Redirect chain " + strings.Join(parts, " -> "), true
}

// IsHTML reports whether a Content-Type header value denotes HTML content
// — the only kind the extractor and staleness detector ever examine.
func IsHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}
