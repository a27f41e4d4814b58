// Package cmd is the cobra-based command-line entrypoint: flag parsing,
// config assembly, and the two output renderers (text summary, JSON). It
// owns no crawl semantics — it builds a config.CrawlConfig, hands it to
// the crawl engine, and prints whatever report.CrawlResult comes back.
package cmd

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/linkaudit/linkhealth-scanner/internal/build"
	"github.com/linkaudit/linkhealth-scanner/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	maxPages        int
	maxRequests     int
	maxDepth        int
	maxWorkers      int
	timeout         time.Duration
	outdatedDays    int
	rateLimit       float64
	maxRetries      int
	backoffFactor   float64
	userAgent       string
	includeExternal bool
	checkOrphans    bool
	jsonOutput      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "linkhealth [url]",
	Short: "A link health scanner for static websites.",
	Long: `linkhealth crawls a website from a starting URL, checks every
reachable link's HTTP health, flags redirects and potentially stale
content, and cross-references discovered pages against the site's
published sitemap to surface orphaned routes.`,
	Args:    cobra.MaximumNArgs(1),
	Version: build.FullVersion(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && cfgFile == "" {
			return fmt.Errorf("a url argument or --config-file is required")
		}

		var startURL string
		if len(args) > 0 {
			startURL = args[0]
		}

		cfg, err := InitConfigWithError(startURL)
		if err != nil {
			return err
		}

		result, err := RunCrawl(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		if jsonOutput {
			return PrintJSON(os.Stdout, result)
		}
		PrintText(os.Stdout, result)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum number of HTML pages to crawl (0 uses the default)")
	rootCmd.Flags().IntVar(&maxRequests, "max-requests", 0, "maximum total HTTP requests for the run (0 uses the default)")
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum link depth from the start URL (0 uses the default)")
	rootCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "number of concurrent fetch workers (0 uses the default)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request HTTP timeout (0 uses the default)")
	rootCmd.Flags().IntVar(&outdatedDays, "outdated-days", 0, "age in days beyond which Last-Modified is flagged stale (0 uses the default)")
	rootCmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "maximum requests per second (0 disables pacing)")
	rootCmd.Flags().IntVar(&maxRetries, "max-retries", -1, "maximum retry attempts per request (-1 uses the default)")
	rootCmd.Flags().Float64Var(&backoffFactor, "backoff-factor", -1, "exponential backoff factor between retries (-1 uses the default)")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.Flags().BoolVar(&includeExternal, "include-external", false, "fetch and check cross-origin links too")
	rootCmd.Flags().BoolVar(&checkOrphans, "check-orphans", true, "cross-reference sitemap.xml to find orphaned pages")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON instead of a text summary")
}

// InitConfig reads the config file or flag values and builds a
// config.CrawlConfig, exiting the process on error. startURL is the
// positional url argument; it is ignored when --config-file is set.
func InitConfig(startURL string) config.CrawlConfig {
	cfg, err := InitConfigWithError(startURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds a config.CrawlConfig from either the config
// file or the CLI flags, returning any error instead of exiting — this
// makes the error path testable.
func InitConfigWithError(startURL string) (config.CrawlConfig, error) {
	if cfgFile != "" {
		return config.WithConfigFile(cfgFile)
	}

	if startURL == "" {
		return config.CrawlConfig{}, fmt.Errorf("a url argument is required when --config-file is not set")
	}
	parsed, err := url.Parse(startURL)
	if err != nil {
		return config.CrawlConfig{}, fmt.Errorf("error parsing url %q: %w", startURL, err)
	}

	builder := config.WithDefault(*parsed).
		WithIncludeExternal(includeExternal).
		WithCheckOrphans(checkOrphans)

	if maxPages > 0 {
		builder = builder.WithMaxPages(maxPages)
	}
	if maxRequests > 0 {
		builder = builder.WithMaxRequests(maxRequests)
	}
	if maxDepth > 0 {
		builder = builder.WithMaxDepth(maxDepth)
	}
	if maxWorkers > 0 {
		builder = builder.WithMaxWorkers(maxWorkers)
	}
	if timeout > 0 {
		builder = builder.WithTimeout(timeout)
	}
	if outdatedDays > 0 {
		builder = builder.WithOutdatedDays(outdatedDays)
	}
	if rateLimit > 0 {
		builder = builder.WithRateLimit(rateLimit)
	}
	if maxRetries >= 0 {
		builder = builder.WithMaxRetries(maxRetries)
	}
	if backoffFactor >= 0 {
		builder = builder.WithBackoffFactor(backoffFactor)
	}
	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}

	return builder.Build()
}

func ResetFlags() {
	cfgFile = ""
	maxPages = 0
	maxRequests = 0
	maxDepth = 0
	maxWorkers = 0
	timeout = 0
	outdatedDays = 0
	rateLimit = 0
	maxRetries = -1
	backoffFactor = -1
	userAgent = ""
	includeExternal = false
	checkOrphans = true
	jsonOutput = false
}

// Test helper functions to set flag values from tests.
func SetConfigFileForTest(path string) { cfgFile = path }
func SetMaxPagesForTest(v int)         { maxPages = v }
func SetMaxRequestsForTest(v int)      { maxRequests = v }
func SetMaxDepthForTest(v int)         { maxDepth = v }
func SetMaxWorkersForTest(v int)       { maxWorkers = v }
func SetTimeoutForTest(v time.Duration) { timeout = v }
func SetOutdatedDaysForTest(v int)     { outdatedDays = v }
func SetRateLimitForTest(v float64)    { rateLimit = v }
func SetMaxRetriesForTest(v int)       { maxRetries = v }
func SetBackoffFactorForTest(v float64) { backoffFactor = v }
func SetUserAgentForTest(v string)     { userAgent = v }
func SetIncludeExternalForTest(v bool) { includeExternal = v }
func SetCheckOrphansForTest(v bool)    { checkOrphans = v }
func SetJSONOutputForTest(v bool)      { jsonOutput = v }
