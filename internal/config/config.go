package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/rohmanhakim/web-scraper/internal/build"
	"github.com/rohmanhakim/web-scraper/pkg/hashutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Transport string

const (
	TransportNetHTTP Transport = "nethttp"
	TransportResty   Transport = "resty"
)

type Config struct {
	//===============
	// Cache
	//===============
	// Primary root of the web cache. Read first, always written.
	cacheLocalDir string
	// Optional secondary root. Read when the local root misses, always written.
	cacheRemoteDir string
	// Suffix of every cache entry file
	cacheExtension string
	// Whether the cache key is "<METHOD> <URL>" instead of the bare URL
	methodInKey bool
	// Serialize writers of the same key inside this process
	serializeWrites bool

	//===============
	// Fetch
	//===============
	// Maximum time of a single request
	timeout time.Duration
	// User agent sent with every request
	userAgent string
	// Extra headers sent with every request
	headers map[string]string
	// HTTP client implementation
	transport Transport

	//===============
	// Extraction
	//===============
	// Folder of the development snapshot cache. Empty disables it.
	extractCacheDir string
	// Digest naming snapshot files
	digestAlgo hashutil.HashAlgo

	//===============
	// CLI batch
	//===============
	// Maximum number of URLs fetched at once
	concurrency int
	// Attempts per URL, 1 means no retry
	maxAttempt int
	// Randomized variation added on top of the backoff delay
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff
	backoffMaxDuration time.Duration

	//===============
	// Logging
	//===============
	logLevel      string
	logFile       string
	logMaxSize    int
	logMaxBackups int
	logCompress   bool
}

type configDTO struct {
	CacheLocalDir          string            `mapstructure:"cacheLocalDir"`
	CacheRemoteDir         string            `mapstructure:"cacheRemoteDir"`
	CacheExtension         string            `mapstructure:"cacheExtension"`
	MethodInKey            *bool             `mapstructure:"methodInKey"`
	SerializeWrites        *bool             `mapstructure:"serializeWrites"`
	Timeout                time.Duration     `mapstructure:"timeout"`
	UserAgent              string            `mapstructure:"userAgent"`
	Headers                map[string]string `mapstructure:"headers"`
	Transport              string            `mapstructure:"transport"`
	ExtractCacheDir        string            `mapstructure:"extractCacheDir"`
	DigestAlgo             string            `mapstructure:"digestAlgo"`
	Concurrency            int               `mapstructure:"concurrency"`
	MaxAttempt             int               `mapstructure:"maxAttempt"`
	Jitter                 time.Duration     `mapstructure:"jitter"`
	RandomSeed             int64             `mapstructure:"randomSeed"`
	BackoffInitialDuration time.Duration     `mapstructure:"backoffInitialDuration"`
	BackoffMultiplier      float64           `mapstructure:"backoffMultiplier"`
	BackoffMaxDuration     time.Duration     `mapstructure:"backoffMaxDuration"`
	LogLevel               string            `mapstructure:"logLevel"`
	LogFile                string            `mapstructure:"logFile"`
	LogMaxSize             int               `mapstructure:"logMaxSize"`
	LogMaxBackups          int               `mapstructure:"logMaxBackups"`
	LogCompress            *bool             `mapstructure:"logCompress"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault()

	// only override when a non-zero value is provided
	if dto.CacheLocalDir != "" {
		cfg.cacheLocalDir = dto.CacheLocalDir
	}
	if dto.CacheRemoteDir != "" {
		cfg.cacheRemoteDir = dto.CacheRemoteDir
	}
	if dto.CacheExtension != "" {
		cfg.cacheExtension = dto.CacheExtension
	}
	if dto.MethodInKey != nil {
		cfg.methodInKey = *dto.MethodInKey
	}
	if dto.SerializeWrites != nil {
		cfg.serializeWrites = *dto.SerializeWrites
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if len(dto.Headers) > 0 {
		cfg.headers = dto.Headers
	}
	if dto.Transport != "" {
		cfg.transport = Transport(dto.Transport)
	}
	if dto.ExtractCacheDir != "" {
		cfg.extractCacheDir = dto.ExtractCacheDir
	}
	if dto.DigestAlgo != "" {
		cfg.digestAlgo = hashutil.HashAlgo(dto.DigestAlgo)
	}
	if dto.Concurrency != 0 {
		cfg.concurrency = dto.Concurrency
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.LogLevel != "" {
		cfg.logLevel = dto.LogLevel
	}
	if dto.LogFile != "" {
		cfg.logFile = dto.LogFile
	}
	if dto.LogMaxSize != 0 {
		cfg.logMaxSize = dto.LogMaxSize
	}
	if dto.LogMaxBackups != 0 {
		cfg.logMaxBackups = dto.LogMaxBackups
	}
	if dto.LogCompress != nil {
		cfg.logCompress = *dto.LogCompress
	}

	return cfg.Build()
}

// WithConfigFile loads a JSON, YAML or TOML file, chosen by extension.
// Durations are written as strings such as "10s" or "250ms".
func WithConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var unsupported viper.UnsupportedConfigError
		var parseErr viper.ConfigParseError
		if errors.As(err, &unsupported) || errors.As(err, &parseErr) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
		}
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	cfgDTO := configDTO{}
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfgDTO, decodeHook); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with default values for all fields.
func WithDefault() *Config {
	defaultConfig := Config{
		cacheLocalDir:          "cache",
		cacheRemoteDir:         "",
		cacheExtension:         ".web-cache",
		methodInKey:            false,
		serializeWrites:        false,
		timeout:                30 * time.Second,
		userAgent:              build.UserAgent(),
		headers:                map[string]string{},
		transport:              TransportNetHTTP,
		extractCacheDir:        "",
		digestAlgo:             hashutil.HashAlgoSHA256,
		concurrency:            4,
		maxAttempt:             1,
		jitter:                 200 * time.Millisecond,
		randomSeed:             time.Now().UnixNano(),
		backoffInitialDuration: 500 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		logLevel:               "info",
		logFile:                "",
		logMaxSize:             100,
		logMaxBackups:          3,
		logCompress:            false,
	}
	return &defaultConfig
}

func (c *Config) WithCacheLocalDir(dir string) *Config {
	c.cacheLocalDir = dir
	return c
}

func (c *Config) WithCacheRemoteDir(dir string) *Config {
	c.cacheRemoteDir = dir
	return c
}

func (c *Config) WithCacheExtension(extension string) *Config {
	c.cacheExtension = extension
	return c
}

func (c *Config) WithMethodInKey(enabled bool) *Config {
	c.methodInKey = enabled
	return c
}

func (c *Config) WithSerializeWrites(enabled bool) *Config {
	c.serializeWrites = enabled
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(userAgent string) *Config {
	c.userAgent = userAgent
	return c
}

func (c *Config) WithHeaders(headers map[string]string) *Config {
	c.headers = headers
	return c
}

func (c *Config) WithTransport(transport Transport) *Config {
	c.transport = transport
	return c
}

func (c *Config) WithExtractCacheDir(dir string) *Config {
	c.extractCacheDir = dir
	return c
}

func (c *Config) WithDigestAlgo(algo hashutil.HashAlgo) *Config {
	c.digestAlgo = algo
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithMaxAttempt(maxAttempt int) *Config {
	c.maxAttempt = maxAttempt
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithBackoffInitialDuration(d time.Duration) *Config {
	c.backoffInitialDuration = d
	return c
}

func (c *Config) WithBackoffMultiplier(m float64) *Config {
	c.backoffMultiplier = m
	return c
}

func (c *Config) WithBackoffMaxDuration(d time.Duration) *Config {
	c.backoffMaxDuration = d
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithLogFile(path string) *Config {
	c.logFile = path
	return c
}

// Build validates the configuration and returns an immutable copy.
func (c *Config) Build() (Config, error) {
	if c.cacheLocalDir == "" && c.cacheRemoteDir == "" {
		return Config{}, fmt.Errorf("%w: at least one cache directory is required", ErrInvalidConfig)
	}
	if c.cacheExtension == "" ||
		strings.ContainsRune(c.cacheExtension, '/') ||
		strings.ContainsRune(c.cacheExtension, filepath.Separator) {
		return Config{}, fmt.Errorf("%w: cache extension %q must not be empty or contain a separator", ErrInvalidConfig, c.cacheExtension)
	}
	if c.transport != TransportNetHTTP && c.transport != TransportResty {
		return Config{}, fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.transport)
	}
	digestAlgo, err := hashutil.ParseHashAlgo(string(c.digestAlgo))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1", ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.logLevel); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}

	built := *c
	built.digestAlgo = digestAlgo
	built.headers = make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		built.headers[k] = v
	}
	return built, nil
}

func (c Config) CacheLocalDir() string {
	return c.cacheLocalDir
}

func (c Config) CacheRemoteDir() string {
	return c.cacheRemoteDir
}

func (c Config) CacheExtension() string {
	return c.cacheExtension
}

func (c Config) MethodInKey() bool {
	return c.methodInKey
}

func (c Config) SerializeWrites() bool {
	return c.serializeWrites
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

// Headers returns a copy of the default request headers.
func (c Config) Headers() map[string]string {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return headers
}

func (c Config) Transport() Transport {
	return c.transport
}

func (c Config) ExtractCacheDir() string {
	return c.extractCacheDir
}

func (c Config) DigestAlgo() hashutil.HashAlgo {
	return c.digestAlgo
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) LogFile() string {
	return c.logFile
}

func (c Config) LogMaxSize() int {
	return c.logMaxSize
}

func (c Config) LogMaxBackups() int {
	return c.logMaxBackups
}

func (c Config) LogCompress() bool {
	return c.logCompress
}
