package cmd

import (
	"fmt"
	"net/http"

	"github.com/rohmanhakim/web-scraper/internal/cache"
	"github.com/rohmanhakim/web-scraper/internal/config"
	"github.com/rohmanhakim/web-scraper/internal/fetcher"
	"github.com/rohmanhakim/web-scraper/internal/logging"
	"github.com/rohmanhakim/web-scraper/internal/metadata"
	"github.com/rohmanhakim/web-scraper/pkg/retry"
	"github.com/rohmanhakim/web-scraper/pkg/timeutil"
	"github.com/sirupsen/logrus"
)

// app holds the collaborators one command invocation works with.
type app struct {
	cfg        config.Config
	logger     *logrus.Entry
	sink       metadata.MetadataSink
	httpClient fetcher.HttpClient
	webCache   *cache.WebCache
	fetcher    *fetcher.Fetcher
}

func newApp(command string) (*app, error) {
	cfg, err := InitConfigWithError()
	if err != nil {
		return nil, err
	}

	logger, err := logging.InitLogger(cfg)
	if err != nil {
		return nil, err
	}
	entry := logger.WithFields(logging.CommandFields(command, cfgFile))
	sink := metadata.NewRecorder(command, entry)

	webCache, cacheErr := cache.NewWebCache(
		cfg.CacheLocalDir(),
		cfg.CacheRemoteDir(),
		sink,
		cache.WithExtension(cfg.CacheExtension()),
	)
	if cacheErr != nil {
		return nil, cacheErr
	}

	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	opts := []fetcher.Option{
		fetcher.WithMethodInKey(cfg.MethodInKey()),
		fetcher.WithDefaultHeaders(toHTTPHeader(cfg.Headers())),
		fetcher.WithUserAgent(cfg.UserAgent()),
	}
	if cfg.SerializeWrites() {
		opts = append(opts, fetcher.WithSerializedWrites())
	}

	entry.WithField("roots", webCache.Roots()).Debug("cache ready")

	return &app{
		cfg:        cfg,
		logger:     entry,
		sink:       sink,
		httpClient: httpClient,
		webCache:   webCache,
		fetcher:    fetcher.NewFetcher(httpClient, webCache, sink, opts...),
	}, nil
}

func newHTTPClient(cfg config.Config) (fetcher.HttpClient, error) {
	switch cfg.Transport() {
	case config.TransportNetHTTP:
		return fetcher.NewNetHTTPClient(cfg.Timeout()), nil
	case config.TransportResty:
		return fetcher.NewRestyClient(cfg.Timeout()), nil
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", config.ErrInvalidConfig, cfg.Transport())
	}
}

func toHTTPHeader(values map[string]string) http.Header {
	header := make(http.Header, len(values))
	for name, value := range values {
		header.Set(name, value)
	}
	return header
}

func (a *app) retryParam() retry.RetryParam {
	return retry.NewRetryParam(
		a.cfg.Jitter(),
		a.cfg.RandomSeed(),
		a.cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			a.cfg.BackoffInitialDuration(),
			a.cfg.BackoffMultiplier(),
			a.cfg.BackoffMaxDuration(),
		),
	)
}
