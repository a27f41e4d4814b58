package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/linkaudit/linkhealth-scanner/pkg/urlutil"
)

// defaultRetryStatuses is the retry-status set spec.md §4.4 names as the
// default: these are the codes that trigger the fetcher's retry loop
// rather than an immediate terminal classification.
var defaultRetryStatuses = []int{408, 425, 429, 500, 502, 503, 504}

// CrawlConfig is the immutable, validated configuration for a single crawl
// run. It is built through WithDefault(startURL).WithX(...).Build(), never
// mutated afterward.
type CrawlConfig struct {
	startURL        url.URL
	includeExternal bool
	checkOrphans    bool
	maxPages        int
	maxRequests     int
	maxDepth        int
	maxWorkers      int
	timeout         time.Duration
	outdatedDays    int
	rateLimit       float64
	maxRetries      int
	backoffFactor   float64
	retryStatuses   []int
	userAgent       string
}

type crawlConfigDTO struct {
	StartURL        string  `json:"startUrl"`
	IncludeExternal bool    `json:"includeExternal,omitempty"`
	CheckOrphans    *bool   `json:"checkOrphans,omitempty"`
	MaxPages        int     `json:"maxPages,omitempty"`
	MaxRequests     int     `json:"maxRequests,omitempty"`
	MaxDepth        int     `json:"maxDepth,omitempty"`
	MaxWorkers      int     `json:"maxWorkers,omitempty"`
	TimeoutSeconds  int     `json:"timeoutSeconds,omitempty"`
	OutdatedDays    int     `json:"outdatedDays,omitempty"`
	RateLimit       float64 `json:"rateLimit,omitempty"`
	MaxRetries      int     `json:"maxRetries,omitempty"`
	BackoffFactor   float64 `json:"backoffFactor,omitempty"`
	RetryStatuses   []int   `json:"retryStatuses,omitempty"`
	UserAgent       string  `json:"userAgent,omitempty"`
}

// WithDefault creates a new CrawlConfig for startURL with every other field
// set to spec.md §6's documented default.
func WithDefault(startURL url.URL) *CrawlConfig {
	return &CrawlConfig{
		startURL:        startURL,
		includeExternal: false,
		checkOrphans:    true,
		maxPages:        150,
		maxRequests:     500,
		maxDepth:        3,
		maxWorkers:      5,
		timeout:         10 * time.Second,
		outdatedDays:    365,
		rateLimit:       0,
		maxRetries:      2,
		backoffFactor:   0.5,
		retryStatuses:   append([]int(nil), defaultRetryStatuses...),
		userAgent:       "LinkHealthScanner/1.0",
	}
}

func WithConfigFile(path string) (CrawlConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return CrawlConfig{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return CrawlConfig{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	var dto crawlConfigDTO
	if err := json.Unmarshal(content, &dto); err != nil {
		return CrawlConfig{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}
	return newConfigFromDTO(dto)
}

func newConfigFromDTO(dto crawlConfigDTO) (CrawlConfig, error) {
	if dto.StartURL == "" {
		return CrawlConfig{}, &ConfigError{Message: "startUrl is required", Cause: ErrInvalidConfig}
	}
	parsed, err := url.Parse(dto.StartURL)
	if err != nil {
		return CrawlConfig{}, &ConfigError{Message: err.Error(), Cause: ErrInvalidConfig}
	}

	builder := WithDefault(*parsed)
	builder.WithIncludeExternal(dto.IncludeExternal)
	if dto.CheckOrphans != nil {
		builder.WithCheckOrphans(*dto.CheckOrphans)
	}
	if dto.MaxPages != 0 {
		builder.WithMaxPages(dto.MaxPages)
	}
	if dto.MaxRequests != 0 {
		builder.WithMaxRequests(dto.MaxRequests)
	}
	if dto.MaxDepth != 0 {
		builder.WithMaxDepth(dto.MaxDepth)
	}
	if dto.MaxWorkers != 0 {
		builder.WithMaxWorkers(dto.MaxWorkers)
	}
	if dto.TimeoutSeconds != 0 {
		builder.WithTimeout(time.Duration(dto.TimeoutSeconds) * time.Second)
	}
	if dto.OutdatedDays != 0 {
		builder.WithOutdatedDays(dto.OutdatedDays)
	}
	if dto.RateLimit != 0 {
		builder.WithRateLimit(dto.RateLimit)
	}
	if dto.MaxRetries != 0 {
		builder.WithMaxRetries(dto.MaxRetries)
	}
	if dto.BackoffFactor != 0 {
		builder.WithBackoffFactor(dto.BackoffFactor)
	}
	if len(dto.RetryStatuses) > 0 {
		builder.WithRetryStatuses(dto.RetryStatuses)
	}
	if dto.UserAgent != "" {
		builder.WithUserAgent(dto.UserAgent)
	}

	return builder.Build()
}

func (c *CrawlConfig) WithIncludeExternal(include bool) *CrawlConfig {
	c.includeExternal = include
	return c
}

func (c *CrawlConfig) WithCheckOrphans(check bool) *CrawlConfig {
	c.checkOrphans = check
	return c
}

func (c *CrawlConfig) WithMaxPages(max int) *CrawlConfig {
	c.maxPages = max
	return c
}

func (c *CrawlConfig) WithMaxRequests(max int) *CrawlConfig {
	c.maxRequests = max
	return c
}

func (c *CrawlConfig) WithMaxDepth(max int) *CrawlConfig {
	c.maxDepth = max
	return c
}

func (c *CrawlConfig) WithMaxWorkers(max int) *CrawlConfig {
	c.maxWorkers = max
	return c
}

func (c *CrawlConfig) WithTimeout(timeout time.Duration) *CrawlConfig {
	c.timeout = timeout
	return c
}

func (c *CrawlConfig) WithOutdatedDays(days int) *CrawlConfig {
	c.outdatedDays = days
	return c
}

func (c *CrawlConfig) WithRateLimit(ratePerSecond float64) *CrawlConfig {
	c.rateLimit = ratePerSecond
	return c
}

func (c *CrawlConfig) WithMaxRetries(max int) *CrawlConfig {
	c.maxRetries = max
	return c
}

func (c *CrawlConfig) WithBackoffFactor(factor float64) *CrawlConfig {
	c.backoffFactor = factor
	return c
}

func (c *CrawlConfig) WithRetryStatuses(statuses []int) *CrawlConfig {
	c.retryStatuses = append([]int(nil), statuses...)
	return c
}

func (c *CrawlConfig) WithUserAgent(agent string) *CrawlConfig {
	c.userAgent = agent
	return c
}

// Build validates every invariant eagerly and returns a ConfigError (fatal,
// raised before any I/O) on the first violation found.
func (c *CrawlConfig) Build() (CrawlConfig, error) {
	if c.startURL.Scheme != "http" && c.startURL.Scheme != "https" {
		return CrawlConfig{}, &ConfigError{Message: "startUrl must have an http or https scheme", Cause: ErrInvalidConfig}
	}
	if c.maxWorkers < 1 {
		return CrawlConfig{}, &ConfigError{Message: "maxWorkers must be >= 1", Cause: ErrInvalidConfig}
	}
	if c.maxRetries < 0 {
		return CrawlConfig{}, &ConfigError{Message: "maxRetries must be >= 0", Cause: ErrInvalidConfig}
	}
	if c.backoffFactor < 0 {
		return CrawlConfig{}, &ConfigError{Message: "backoffFactor must be >= 0", Cause: ErrInvalidConfig}
	}

	canonical := urlutil.Canonicalize(c.startURL)
	c.startURL = canonical
	return *c, nil
}

func (c CrawlConfig) StartURL() url.URL {
	return c.startURL
}

func (c CrawlConfig) IncludeExternal() bool {
	return c.includeExternal
}

func (c CrawlConfig) CheckOrphans() bool {
	return c.checkOrphans
}

func (c CrawlConfig) MaxPages() int {
	return c.maxPages
}

func (c CrawlConfig) MaxRequests() int {
	return c.maxRequests
}

func (c CrawlConfig) MaxDepth() int {
	return c.maxDepth
}

func (c CrawlConfig) MaxWorkers() int {
	return c.maxWorkers
}

func (c CrawlConfig) Timeout() time.Duration {
	return c.timeout
}

func (c CrawlConfig) OutdatedDays() int {
	return c.outdatedDays
}

func (c CrawlConfig) RateLimit() float64 {
	return c.rateLimit
}

func (c CrawlConfig) MaxRetries() int {
	return c.maxRetries
}

func (c CrawlConfig) BackoffFactor() float64 {
	return c.backoffFactor
}

func (c CrawlConfig) RetryStatuses() []int {
	statuses := make([]int, len(c.retryStatuses))
	copy(statuses, c.retryStatuses)
	return statuses
}

func (c CrawlConfig) UserAgent() string {
	return c.userAgent
}
