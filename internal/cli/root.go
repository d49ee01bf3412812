package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/web-scraper/internal/config"
	"github.com/rohmanhakim/web-scraper/pkg/hashutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	cacheDir        string
	remoteCacheDir  string
	cacheExtension  string
	methodInKey     bool
	serializeWrites bool
	userAgent       string
	headers         []string
	timeout         time.Duration
	transport       string
	concurrency     int
	maxAttempt      int
	jitter          time.Duration
	randomSeed      int64
	extractCacheDir string
	digestAlgo      string
	logLevel        string
	logFile         string
)

// parseHeaders converts "Name: value" pairs into a header map.
func parseHeaders(pairs []string) (map[string]string, error) {
	parsed := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: header %q must look like \"Name: value\"", config.ErrInvalidConfig, pair)
		}
		parsed[name] = strings.TrimSpace(value)
	}
	return parsed, nil
}

// NewRootCommand builds the command tree. Flag variables are rebound to
// their defaults on every call.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "web-scraper",
		Short: "Fetch web pages through a local content-addressed cache and scrape them.",
		Long: `web-scraper downloads pages once and serves every later request for the
same URL from a sharded on-disk cache. Cached pages can be queried with CSS
selectors and printed as text, attributes, HTML or Markdown.

The cache never expires entries; use "clear" to drop one.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config-file", "", "config file path (JSON, YAML or TOML)")
	flags.StringVar(&cacheDir, "cache-dir", "", "local cache root (default \"cache\")")
	flags.StringVar(&remoteCacheDir, "remote-cache-dir", "", "secondary cache root, read after the local one")
	flags.StringVar(&cacheExtension, "cache-extension", "", "cache entry extension (default \".web-cache\")")
	flags.BoolVar(&methodInKey, "method-in-key", false, "prefix cache keys with the HTTP method")
	flags.BoolVar(&serializeWrites, "serialize-writes", false, "allow one in-flight download per cache key")
	flags.StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	flags.StringArrayVar(&headers, "header", []string{}, "extra request header \"Name: value\" (can be repeated)")
	flags.DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	flags.StringVar(&transport, "transport", "", "HTTP client: nethttp or resty")
	flags.IntVar(&concurrency, "concurrency", 0, "number of URLs fetched at once")
	flags.IntVar(&maxAttempt, "max-attempt", 0, "attempts per URL for retryable failures")
	flags.DurationVar(&jitter, "jitter", 0, "random jitter added to retry backoff")
	flags.Int64Var(&randomSeed, "random-seed", 0, "seed for retry jitter (0 for current time)")
	flags.StringVar(&extractCacheDir, "extract-cache-dir", "", "keep raw HTML snapshots of scraped pages here")
	flags.StringVar(&digestAlgo, "digest", "", "snapshot file digest: sha256 or blake3")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "write logs to this rotating file instead of stderr")

	rootCmd.AddCommand(
		newGetCommand(),
		newTextCommand(),
		newPathCommand(),
		newClearCommand(),
		newScrapeCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// InitConfigWithError builds the configuration from the config file when
// one is given, otherwise from defaults overridden by flags.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault()

	if cacheDir != "" {
		configBuilder = configBuilder.WithCacheLocalDir(cacheDir)
	}

	if remoteCacheDir != "" {
		configBuilder = configBuilder.WithCacheRemoteDir(remoteCacheDir)
	}

	if cacheExtension != "" {
		configBuilder = configBuilder.WithCacheExtension(cacheExtension)
	}

	if methodInKey {
		configBuilder = configBuilder.WithMethodInKey(methodInKey)
	}

	if serializeWrites {
		configBuilder = configBuilder.WithSerializeWrites(serializeWrites)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if len(headers) > 0 {
		parsed, err := parseHeaders(headers)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithHeaders(parsed)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if transport != "" {
		configBuilder = configBuilder.WithTransport(config.Transport(transport))
	}

	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if extractCacheDir != "" {
		configBuilder = configBuilder.WithExtractCacheDir(extractCacheDir)
	}

	if digestAlgo != "" {
		configBuilder = configBuilder.WithDigestAlgo(hashutil.HashAlgo(digestAlgo))
	}

	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}

	if logFile != "" {
		configBuilder = configBuilder.WithLogFile(logFile)
	}

	return configBuilder.Build()
}

func ResetFlags() {
	cfgFile = ""
	cacheDir = ""
	remoteCacheDir = ""
	cacheExtension = ""
	methodInKey = false
	serializeWrites = false
	userAgent = ""
	headers = []string{}
	timeout = 0
	transport = ""
	concurrency = 0
	maxAttempt = 0
	jitter = 0
	randomSeed = 0
	extractCacheDir = ""
	digestAlgo = ""
	logLevel = ""
	logFile = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetCacheDirForTest(dir string) {
	cacheDir = dir
}

func SetRemoteCacheDirForTest(dir string) {
	remoteCacheDir = dir
}

func SetHeadersForTest(pairs []string) {
	headers = pairs
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetTransportForTest(name string) {
	transport = name
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetDigestAlgoForTest(algo string) {
	digestAlgo = algo
}

func SetLogLevelForTest(level string) {
	logLevel = level
}
