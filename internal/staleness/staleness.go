// Package staleness scans an HTTP response's headers and body for signals
// that a page's content has gone stale.
package staleness

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// stalePhrases is the fixed, ordered list of substrings checked
// case-insensitively against the response body.
var stalePhrases = []string{
	"under construction",
	"coming soon",
	"lorem ipsum",
	"outdated",
	"last updated 20",
}

var yearPattern = regexp.MustCompile(`(?:19|20)\d{2}`)

// Detect examines the Last-Modified header and the body text of an HTML
// response and returns the ordered list of staleness signals found. now is
// injected so detection is deterministic and testable; callers pass
// time.Now().UTC(). outdatedDays is the age threshold beyond which a
// Last-Modified header is considered stale.
func Detect(headers http.Header, body string, now time.Time, outdatedDays int) []string {
	var signals []string

	if lastModified := headers.Get("Last-Modified"); lastModified != "" {
		if parsed, err := http.ParseTime(lastModified); err == nil {
			ageDays := int(now.Sub(parsed.UTC()).Hours() / 24)
			if ageDays > outdatedDays {
				signals = append(signals, fmt.Sprintf(
					"Last-Modified is %d days ago (%s)", ageDays, lastModified,
				))
			}
		}
	}

	if years := yearPattern.FindAllString(body, -1); len(years) > 0 {
		maxYear := 0
		for _, y := range years {
			n, err := strconv.Atoi(y)
			if err != nil {
				continue
			}
			if n > maxYear {
				maxYear = n
			}
		}
		if maxYear > 0 && maxYear < now.Year()-1 {
			signals = append(signals, fmt.Sprintf("Latest year mentioned is %d", maxYear))
		}
	}

	lowered := strings.ToLower(body)
	for _, phrase := range stalePhrases {
		if strings.Contains(lowered, phrase) {
			signals = append(signals, fmt.Sprintf("Contains '%s'", phrase))
		}
	}

	return signals
}
