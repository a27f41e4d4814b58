package fetcher

import (
	"net/http"
	"net/url"
	"time"
)

// FetchParam carries the inputs to a single Fetch call.
type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
}

func NewFetchParam(fetchUrl url.URL, userAgent string) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
	}
}

// RetryPolicy controls when a fetch attempt is retried and how long the
// fetcher waits between attempts.
type RetryPolicy struct {
	MaxRetries    int
	BackoffFactor float64
	RetryStatuses map[int]struct{}
}

// NewRetryPolicy builds a RetryPolicy from a slice of status codes that
// should trigger a retry.
func NewRetryPolicy(maxRetries int, backoffFactor float64, retryStatuses []int) RetryPolicy {
	set := make(map[int]struct{}, len(retryStatuses))
	for _, code := range retryStatuses {
		set[code] = struct{}{}
	}
	return RetryPolicy{
		MaxRetries:    maxRetries,
		BackoffFactor: backoffFactor,
		RetryStatuses: set,
	}
}

func (p RetryPolicy) isRetryableStatus(code int) bool {
	_, ok := p.RetryStatuses[code]
	return ok
}

// Response is the final outcome of a Fetch call: the response actually
// returned to the caller, whether or not its status code was itself one
// that triggered retries along the way.
type Response struct {
	url           url.URL
	statusCode    int
	headers       http.Header
	body          []byte
	redirectChain []int
	fetchedAt     time.Time
	attempts      int
}

func (r *Response) URL() url.URL {
	return r.url
}

func (r *Response) StatusCode() int {
	return r.statusCode
}

func (r *Response) Headers() http.Header {
	return r.headers
}

func (r *Response) Body() []byte {
	return r.body
}

// RedirectChain returns the status codes of every hop the request took,
// including the final one — so a direct 200 response yields [200], and a
// single 301-then-200 yields [301, 200].
func (r *Response) RedirectChain() []int {
	return r.redirectChain
}

func (r *Response) FetchedAt() time.Time {
	return r.fetchedAt
}

func (r *Response) Attempts() int {
	return r.attempts
}

// NewResponseForTest builds a Response for test packages without exposing
// its unexported fields.
func NewResponseForTest(
	fetchUrl url.URL,
	statusCode int,
	headers http.Header,
	body []byte,
	redirectChain []int,
	fetchedAt time.Time,
	attempts int,
) Response {
	return Response{
		url:           fetchUrl,
		statusCode:    statusCode,
		headers:       headers,
		body:          body,
		redirectChain: redirectChain,
		fetchedAt:     fetchedAt,
		attempts:      attempts,
	}
}
