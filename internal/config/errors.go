package config

import (
	"errors"
	"fmt"

	"github.com/linkaudit/linkhealth-scanner/pkg/failure"
)

var ErrFileDoesNotExist = errors.New("config file does not exist")
var ErrReadConfigFail = errors.New("failed to read config file")
var ErrConfigParsingFail = errors.New("failed to parse config file")
var ErrInvalidConfig = errors.New("invalid config")

// ConfigError reports a configuration problem caught at construction time,
// before any I/O has occurred. It is always fatal: the caller must fix the
// configuration and rebuild rather than proceed with a partial crawl.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Cause, e.Message)
}

func (e *ConfigError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

var _ failure.ClassifiedError = (*ConfigError)(nil)
