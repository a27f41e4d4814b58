package metadata

import (
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"
)

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content type
- Crawl depth
- Attempt counts

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Status codes
- Durations
- Identifiers
*/

// Sink is the observability boundary every pipeline package logs through.
// Nothing on this interface may be used to drive control flow — see the
// ErrorCause doc comment.
type Sink interface {
	RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, attempts int, crawlDepth int)
	RecordError(observedAt time.Time, packageName, action string, cause ErrorCause, errorString string, attrs []Attribute)
	RecordArtifact(path string)
	RecordFinalCrawlStats(stats FinalCrawlStats)
}

// Recorder is the Sink implementation used in production: every event is
// encoded as a single logfmt line and written to the configured writer.
type Recorder struct {
	mu  sync.Mutex
	enc *logfmt.Encoder
}

func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: logfmt.NewEncoder(w)}
}

func (r *Recorder) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, attempts int, crawlDepth int) {
	r.emit(
		"event", "fetch",
		"url", fetchUrl,
		"status", strconv.Itoa(httpStatus),
		"duration_ms", strconv.FormatInt(duration.Milliseconds(), 10),
		"content_type", contentType,
		"attempts", strconv.Itoa(attempts),
		"depth", strconv.Itoa(crawlDepth),
	)
}

func (r *Recorder) RecordError(observedAt time.Time, packageName, action string, cause ErrorCause, errorString string, attrs []Attribute) {
	kv := []string{
		"event", "error",
		"time", observedAt.UTC().Format(time.RFC3339),
		"package", packageName,
		"action", action,
		"cause", causeLabel(cause),
		"error", errorString,
	}
	for _, a := range attrs {
		kv = append(kv, string(a.Key), a.Value)
	}
	r.emit(kv...)
}

func (r *Recorder) RecordArtifact(path string) {
	r.emit("event", "artifact", "path", path)
}

func (r *Recorder) RecordFinalCrawlStats(stats FinalCrawlStats) {
	r.emit(
		"event", "crawl_complete",
		"total_pages", strconv.Itoa(stats.totalPages),
		"total_requests", strconv.Itoa(stats.totalRequests),
		"total_errors", strconv.Itoa(stats.totalErrors),
		"duration_ms", strconv.FormatInt(stats.durationMs, 10),
	)
}

func (r *Recorder) emit(keyvals ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i+1 < len(keyvals); i += 2 {
		_ = r.enc.EncodeKeyval(keyvals[i], keyvals[i+1])
	}
	_ = r.enc.EndRecord()
}

func causeLabel(cause ErrorCause) string {
	switch cause {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// NoopSink discards every event. Used in tests that need a Sink but don't
// care about its output.
type NoopSink struct{}

func (NoopSink) RecordFetch(string, int, time.Duration, string, int, int)          {}
func (NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}
func (NoopSink) RecordArtifact(string)                                             {}
func (NoopSink) RecordFinalCrawlStats(FinalCrawlStats)                             {}

// NewFinalCrawlStats builds a FinalCrawlStats for callers outside the
// package (the crawl engine, after termination).
func NewFinalCrawlStats(totalPages, totalRequests, totalErrors int, durationMs int64) FinalCrawlStats {
	return FinalCrawlStats{
		totalPages:    totalPages,
		totalRequests: totalRequests,
		totalErrors:   totalErrors,
		durationMs:    durationMs,
	}
}
