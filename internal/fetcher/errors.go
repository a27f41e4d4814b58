package fetcher

import (
	"fmt"

	"github.com/linkaudit/linkhealth-scanner/pkg/failure"
)

// TransportErrorCause classifies why a fetch never produced an HTTP
// response at all (as opposed to producing one with an error-range status
// code, which is a normal Response, not a TransportError).
type TransportErrorCause string

const (
	ErrCauseTimeout               TransportErrorCause = "timeout"
	ErrCauseNetworkFailure        TransportErrorCause = "network failure"
	ErrCauseReadResponseBodyError TransportErrorCause = "failed to read response body"
	ErrCauseContextCanceled       TransportErrorCause = "context canceled"
)

// TransportError reports that no HTTP response was obtained after
// exhausting the configured retries. It is always recoverable: a single
// link failing to fetch never halts the crawl.
type TransportError struct {
	Message string
	Cause   TransportErrorCause
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch error: %s: %s", e.Cause, e.Message)
}

func (e *TransportError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
