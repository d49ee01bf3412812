package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/web-scraper/internal/build"
	"github.com/rohmanhakim/web-scraper/internal/config"
	"github.com/rohmanhakim/web-scraper/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestWithDefault(t *testing.T) {
	cfg, err := config.WithDefault().Build()
	require.NoError(t, err)

	assert.Equal(t, "cache", cfg.CacheLocalDir())
	assert.Empty(t, cfg.CacheRemoteDir())
	assert.Equal(t, ".web-cache", cfg.CacheExtension())
	assert.False(t, cfg.MethodInKey())
	assert.False(t, cfg.SerializeWrites())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, build.UserAgent(), cfg.UserAgent())
	assert.Empty(t, cfg.Headers())
	assert.Equal(t, config.TransportNetHTTP, cfg.Transport())
	assert.Empty(t, cfg.ExtractCacheDir())
	assert.Equal(t, hashutil.HashAlgoSHA256, cfg.DigestAlgo())
	assert.Equal(t, 4, cfg.Concurrency())
	assert.Equal(t, 1, cfg.MaxAttempt())
	assert.Equal(t, "info", cfg.LogLevel())
	assert.Empty(t, cfg.LogFile())
}

func TestBuilderSetters(t *testing.T) {
	cfg, err := config.WithDefault().
		WithCacheLocalDir("/tmp/local").
		WithCacheRemoteDir("/mnt/shared").
		WithCacheExtension(".page").
		WithMethodInKey(true).
		WithSerializeWrites(true).
		WithTimeout(5 * time.Second).
		WithUserAgent("TestBot/1.0").
		WithHeaders(map[string]string{"Accept-Language": "en"}).
		WithTransport(config.TransportResty).
		WithExtractCacheDir("/tmp/snapshots").
		WithDigestAlgo(hashutil.HashAlgoBLAKE3).
		WithConcurrency(8).
		WithMaxAttempt(3).
		WithJitter(time.Millisecond).
		WithRandomSeed(7).
		WithBackoffInitialDuration(time.Second).
		WithBackoffMultiplier(1.5).
		WithBackoffMaxDuration(time.Minute).
		WithLogLevel("debug").
		WithLogFile("/tmp/web-scraper.log").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/local", cfg.CacheLocalDir())
	assert.Equal(t, "/mnt/shared", cfg.CacheRemoteDir())
	assert.Equal(t, ".page", cfg.CacheExtension())
	assert.True(t, cfg.MethodInKey())
	assert.True(t, cfg.SerializeWrites())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "TestBot/1.0", cfg.UserAgent())
	assert.Equal(t, map[string]string{"Accept-Language": "en"}, cfg.Headers())
	assert.Equal(t, config.TransportResty, cfg.Transport())
	assert.Equal(t, "/tmp/snapshots", cfg.ExtractCacheDir())
	assert.Equal(t, hashutil.HashAlgoBLAKE3, cfg.DigestAlgo())
	assert.Equal(t, 8, cfg.Concurrency())
	assert.Equal(t, 3, cfg.MaxAttempt())
	assert.Equal(t, time.Millisecond, cfg.Jitter())
	assert.Equal(t, int64(7), cfg.RandomSeed())
	assert.Equal(t, time.Second, cfg.BackoffInitialDuration())
	assert.Equal(t, 1.5, cfg.BackoffMultiplier())
	assert.Equal(t, time.Minute, cfg.BackoffMaxDuration())
	assert.Equal(t, "debug", cfg.LogLevel())
	assert.Equal(t, "/tmp/web-scraper.log", cfg.LogFile())
}

func TestBuild_IsolatesHeaders(t *testing.T) {
	headers := map[string]string{"X-Token": "a"}
	cfg, err := config.WithDefault().WithHeaders(headers).Build()
	require.NoError(t, err)

	headers["X-Token"] = "changed"
	assert.Equal(t, "a", cfg.Headers()["X-Token"])

	got := cfg.Headers()
	got["X-Token"] = "changed again"
	assert.Equal(t, "a", cfg.Headers()["X-Token"])
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name    string
		builder *config.Config
	}{
		{"no cache root", config.WithDefault().WithCacheLocalDir("")},
		{"empty extension", config.WithDefault().WithCacheExtension("")},
		{"extension with separator", config.WithDefault().WithCacheExtension("a/b")},
		{"unknown transport", config.WithDefault().WithTransport("carrier-pigeon")},
		{"unknown digest", config.WithDefault().WithDigestAlgo("md5")},
		{"zero timeout", config.WithDefault().WithTimeout(0)},
		{"zero concurrency", config.WithDefault().WithConcurrency(0)},
		{"zero attempts", config.WithDefault().WithMaxAttempt(0)},
		{"bad log level", config.WithDefault().WithLogLevel("loud")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrInvalidConfig))
		})
	}
}

func TestBuild_RemoteOnlyIsValid(t *testing.T) {
	cfg, err := config.WithDefault().WithCacheLocalDir("").WithCacheRemoteDir("/mnt/shared").Build()
	require.NoError(t, err)
	assert.Empty(t, cfg.CacheLocalDir())
	assert.Equal(t, "/mnt/shared", cfg.CacheRemoteDir())
}

func TestWithConfigFile_FileDoesNotExist(t *testing.T) {
	_, err := config.WithConfigFile("/nonexistent/path/config.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrFileDoesNotExist))
}

func TestWithConfigFile_InvalidJSON(t *testing.T) {
	path := writeConfig(t, "invalid.json", "{invalid json content}")

	_, err := config.WithConfigFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigParsingFail))
}

func TestWithConfigFile_UnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.unknown", "cacheLocalDir = 'x'")

	_, err := config.WithConfigFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigParsingFail))
}

func TestWithConfigFile_ValidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"cacheLocalDir": "/var/cache/web",
		"cacheRemoteDir": "/mnt/web",
		"cacheExtension": ".entry",
		"methodInKey": true,
		"timeout": "15s",
		"userAgent": "TestBot/1.0",
		"headers": {"Accept": "text/html"},
		"transport": "resty",
		"digestAlgo": "BLAKE3",
		"concurrency": 16,
		"maxAttempt": 4,
		"backoffInitialDuration": "250ms",
		"backoffMultiplier": 3,
		"backoffMaxDuration": "1m",
		"logLevel": "warn"
	}`)

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/web", cfg.CacheLocalDir())
	assert.Equal(t, "/mnt/web", cfg.CacheRemoteDir())
	assert.Equal(t, ".entry", cfg.CacheExtension())
	assert.True(t, cfg.MethodInKey())
	assert.False(t, cfg.SerializeWrites())
	assert.Equal(t, 15*time.Second, cfg.Timeout())
	assert.Equal(t, "TestBot/1.0", cfg.UserAgent())
	// viper folds map keys to lower case
	assert.Equal(t, "text/html", cfg.Headers()["accept"])
	assert.Equal(t, config.TransportResty, cfg.Transport())
	assert.Equal(t, hashutil.HashAlgoBLAKE3, cfg.DigestAlgo())
	assert.Equal(t, 16, cfg.Concurrency())
	assert.Equal(t, 4, cfg.MaxAttempt())
	assert.Equal(t, 250*time.Millisecond, cfg.BackoffInitialDuration())
	assert.Equal(t, 3.0, cfg.BackoffMultiplier())
	assert.Equal(t, time.Minute, cfg.BackoffMaxDuration())
	assert.Equal(t, "warn", cfg.LogLevel())
}

func TestWithConfigFile_YAMLPartial(t *testing.T) {
	path := writeConfig(t, "config.yaml", "cacheLocalDir: ./pages\nserializeWrites: true\n")

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "./pages", cfg.CacheLocalDir())
	assert.True(t, cfg.SerializeWrites())
	assert.Equal(t, ".web-cache", cfg.CacheExtension())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestWithConfigFile_TOMLInvalidValue(t *testing.T) {
	path := writeConfig(t, "config.toml", "transport = \"smoke-signal\"\n")

	_, err := config.WithConfigFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestWithConfigFile_EmptyJSON(t *testing.T) {
	path := writeConfig(t, "empty.json", "{}")

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cache", cfg.CacheLocalDir())
}
