package fetcher

import (
	"context"

	"github.com/linkaudit/linkhealth-scanner/pkg/failure"
)

// Fetcher performs a single logical fetch of a URL, transparently applying
// rate limiting and retries. The caller sees only the final outcome: a
// Response (even one carrying an error-range status code) on success, or a
// TransportError when no response was ever obtained.
type Fetcher interface {
	Fetch(
		ctx context.Context,
		crawlDepth int,
		fetchParam FetchParam,
		retryPolicy RetryPolicy,
	) (Response, failure.ClassifiedError)
}
