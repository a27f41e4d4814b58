package sitemap

import (
	"fmt"

	"github.com/linkaudit/linkhealth-scanner/pkg/failure"
)

// FetchError classifies a transport-level failure while fetching
// sitemap.xml. It is always recoverable: Load treats every fetch failure
// the same way, as an absent sitemap.
type FetchError struct {
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("sitemap fetch error: %s", e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

var _ failure.ClassifiedError = (*FetchError)(nil)
