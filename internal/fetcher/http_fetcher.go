// Package fetcher performs rate-limited, retried HTTP GET requests and
// classifies their outcome. It never inspects the response body's
// meaning — only the crawl engine decides what a status code implies.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/linkaudit/linkhealth-scanner/internal/metadata"
	"github.com/linkaudit/linkhealth-scanner/pkg/failure"
	"github.com/linkaudit/linkhealth-scanner/pkg/limiter"
	"github.com/linkaudit/linkhealth-scanner/pkg/timeutil"
)

/*
Responsibilities
- Issue the HTTP request with a configured User-Agent and timeout
- Wait on the shared rate gate before every attempt, including retries
- Follow redirects, recording every hop's status code
- Retry transport errors and configured retry-status responses
- Emit a fetch event and, on transport failure, an error event

The fetcher is content-agnostic; only the engine inspects Content-Type.
*/

type HTTPFetcher struct {
	metadataSink metadata.Sink
	httpClient   *http.Client
	gate         *limiter.Gate
	userAgent    string
}

// NewHTTPFetcher builds a fetcher sharing gate across every caller — the
// gate, not the fetcher, is what makes rate limiting process-wide rather
// than per-fetcher. transport is the process-wide connection pool (sized
// for the worker pool) shared with every other HTTP client in the run,
// including the sitemap loader's.
func NewHTTPFetcher(
	metadataSink metadata.Sink,
	gate *limiter.Gate,
	userAgent string,
	timeout time.Duration,
	transport http.RoundTripper,
) *HTTPFetcher {
	chain := &chainTransport{base: transport}
	return &HTTPFetcher{
		metadataSink: metadataSink,
		gate:         gate,
		userAgent:    userAgent,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: chain,
		},
	}
}

func (h *HTTPFetcher) Fetch(
	ctx context.Context,
	crawlDepth int,
	fetchParam FetchParam,
	retryPolicy RetryPolicy,
) (Response, failure.ClassifiedError) {
	startTime := time.Now()

	resp, attempts, err := h.fetchWithRetry(ctx, fetchParam, retryPolicy)

	duration := time.Since(startTime)
	statusCode := 0
	contentType := ""
	if err == nil {
		statusCode = resp.statusCode
		contentType = resp.headers.Get("Content-Type")
	}

	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		attempts,
		crawlDepth,
	)

	if err != nil {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			"HTTPFetcher.Fetch",
			mapTransportErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchParam.fetchUrl.String()),
				metadata.NewAttr(metadata.AttrDepth, fmt.Sprintf("%d", crawlDepth)),
			},
		)
		return Response{}, err
	}

	return resp, nil
}

func (h *HTTPFetcher) fetchWithRetry(
	ctx context.Context,
	fetchParam FetchParam,
	retryPolicy RetryPolicy,
) (Response, int, *TransportError) {
	attempt := 0
	for {
		if err := h.gate.Wait(ctx); err != nil {
			return Response{}, attempt + 1, &TransportError{
				Message: err.Error(),
				Cause:   ErrCauseContextCanceled,
			}
		}

		resp, transportErr := h.performFetch(ctx, fetchParam.fetchUrl, fetchParam.userAgent)
		attempt++

		if transportErr != nil {
			if attempt > retryPolicy.MaxRetries {
				return Response{}, attempt, transportErr
			}
			if err := sleepBackoff(ctx, attempt, retryPolicy.BackoffFactor); err != nil {
				return Response{}, attempt, &TransportError{
					Message: err.Error(),
					Cause:   ErrCauseContextCanceled,
				}
			}
			continue
		}

		resp.attempts = attempt
		if retryPolicy.isRetryableStatus(resp.statusCode) && attempt <= retryPolicy.MaxRetries {
			if err := sleepBackoff(ctx, attempt, retryPolicy.BackoffFactor); err != nil {
				return Response{}, attempt, &TransportError{
					Message: err.Error(),
					Cause:   ErrCauseContextCanceled,
				}
			}
			continue
		}

		return resp, attempt, nil
	}
}

// sleepBackoff waits backoff_factor * 2^n seconds, where n is the number
// of already-failed attempts minus one (0 before the first retry, so
// attempt 1 failing waits backoff_factor, attempt 2 failing waits
// 2 * backoff_factor), matching the fixed
// exponential schedule the spec defines (no jitter; max retries already
// bounds the total wait, so the cap passed to timeutil is set far above
// anything reachable in practice). The math is delegated to timeutil so
// every backoff schedule in the module — here, in pkg/retry, and in
// pkg/limiter's jitter — shares the same implementation.
func sleepBackoff(ctx context.Context, attempt int, backoffFactor float64) error {
	backoffParam := timeutil.NewBackoffParam(
		time.Duration(backoffFactor*float64(time.Second)),
		2.0,
		365*24*time.Hour,
	)
	delay := timeutil.ExponentialBackoffDelay(attempt, 0, rand.Rand{}, backoffParam)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *HTTPFetcher) performFetch(ctx context.Context, fetchUrl url.URL, userAgent string) (Response, *TransportError) {
	chainCtx, chain := withChain(ctx)

	req, err := http.NewRequestWithContext(chainCtx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return Response{}, &TransportError{
			Message: fmt.Sprintf("failed to create request: %v", err),
			Cause:   ErrCauseNetworkFailure,
		}
	}
	for key, value := range requestHeaders(userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		cause := ErrCauseNetworkFailure
		if ctx.Err() != nil {
			cause = ErrCauseTimeout
		}
		return Response{}, &TransportError{
			Message: fmt.Sprintf("request failed: %v", err),
			Cause:   cause,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &TransportError{
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Cause:   ErrCauseReadResponseBodyError,
		}
	}

	return Response{
		url:           *resp.Request.URL,
		statusCode:    resp.StatusCode,
		headers:       resp.Header,
		body:          body,
		redirectChain: *chain,
		fetchedAt:     time.Now(),
	}, nil
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}
}

func mapTransportErrorToMetadataCause(err *TransportError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}

type chainContextKey struct{}

// withChain attaches a fresh, empty redirect-chain slice to ctx and
// returns a pointer the caller can read back after the request completes.
func withChain(ctx context.Context) (context.Context, *[]int) {
	chain := &[]int{}
	return context.WithValue(ctx, chainContextKey{}, chain), chain
}

// chainTransport wraps a base RoundTripper to record the status code of
// every hop http.Client makes while following redirects — the client
// itself discards intermediate responses once it decides to follow them,
// so this is the only point where they can be observed.
type chainTransport struct {
	mu   sync.Mutex
	base http.RoundTripper
}

func (t *chainTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil && resp != nil {
		if chain, ok := req.Context().Value(chainContextKey{}).(*[]int); ok {
			t.mu.Lock()
			*chain = append(*chain, resp.StatusCode)
			t.mu.Unlock()
		}
	}
	return resp, err
}
