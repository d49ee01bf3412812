package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rohmanhakim/web-scraper/internal/cache"
	"github.com/rohmanhakim/web-scraper/internal/metadata"
	"github.com/rohmanhakim/web-scraper/pkg/failure"
	"github.com/rohmanhakim/web-scraper/pkg/urlutil"
)

/*
Responsibilities

- Serve a request from the web cache when an entry exists
- Otherwise validate the request, perform it and persist the body

Fetch Semantics

- A cache hit skips validation and the network entirely
- Only 200 and 204 responses are accepted and cached
- Nothing is retried here; see pkg/retry for a caller-side policy
*/

type Option func(*Fetcher)

// WithMethodInKey makes the cache key "<METHOD> <URL>" instead of the URL.
func WithMethodInKey(enabled bool) Option {
	return func(f *Fetcher) {
		f.methodInKey = enabled
	}
}

// WithDefaultHeaders sets headers sent with every request.
func WithDefaultHeaders(headers http.Header) Option {
	return func(f *Fetcher) {
		if f.defaultHeaders == nil {
			f.defaultHeaders = http.Header{}
		}
		for key, values := range headers {
			f.defaultHeaders[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
		}
	}
}

// WithUserAgent sets the User-Agent default header.
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		if f.defaultHeaders == nil {
			f.defaultHeaders = http.Header{}
		}
		f.defaultHeaders.Set("User-Agent", userAgent)
	}
}

// WithSerializedWrites allows at most one in-flight miss per cache key in
// this process; concurrent callers for the same key wait and then hit
// the cache.
func WithSerializedWrites() Option {
	return func(f *Fetcher) {
		f.keyLocks = cache.NewKeyLocks()
	}
}

type Fetcher struct {
	httpClient     HttpClient
	webCache       *cache.WebCache
	metadataSink   metadata.MetadataSink
	methodInKey    bool
	defaultHeaders http.Header
	keyLocks       *cache.KeyLocks
}

// NewFetcher composes one shared HttpClient with a web cache. The client
// should live for the whole process.
func NewFetcher(
	httpClient HttpClient,
	webCache *cache.WebCache,
	metadataSink metadata.MetadataSink,
	opts ...Option,
) *Fetcher {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	f := &Fetcher{
		httpClient:     httpClient,
		webCache:       webCache,
		metadataSink:   metadataSink,
		defaultHeaders: http.Header{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Cache() *cache.WebCache {
	return f.webCache
}

// CacheKey returns the key a request for method and rawURL is stored under.
func (f *Fetcher) CacheKey(method string, rawURL string) string {
	return urlutil.CacheKey(method, rawURL, f.methodInKey)
}

// Fetch returns the body for method and rawURL, from the cache when
// possible.
func (f *Fetcher) Fetch(ctx context.Context, method string, rawURL string) (FetchResult, failure.ClassifiedError) {
	return f.FetchWithHeaders(ctx, method, rawURL, nil)
}

// FetchWithHeaders is Fetch with per-request headers that override the
// defaults of the same name. They do not take part in the cache key.
func (f *Fetcher) FetchWithHeaders(
	ctx context.Context,
	method string,
	rawURL string,
	headers http.Header,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "Fetcher.Fetch"
	if method == "" {
		method = http.MethodGet
	}
	key := f.CacheKey(method, rawURL)

	if f.keyLocks != nil {
		unlock := f.keyLocks.Lock(key)
		defer unlock()
	}

	entry, ok, cacheErr := f.webCache.ReadEntry(key)
	if cacheErr != nil {
		return FetchResult{}, f.fail(callerMethod, rawURL, &FetchError{
			Message:   cacheErr.Error(),
			Retryable: failure.IsRecoverable(cacheErr),
			Cause:     ErrCauseCache,
			URL:       rawURL,
			Err:       cacheErr,
		})
	}
	if ok {
		f.metadataSink.RecordCacheHit(key, entry.Path)
		return FetchResult{
			url:      rawURL,
			cacheKey: key,
			body:     entry.Data,
			meta: ResponseMeta{
				statusCode:      http.StatusOK,
				responseHeaders: http.Header{},
				cacheHit:        true,
			},
		}, nil
	}

	if _, err := urlutil.ValidateRequestURL(rawURL); err != nil {
		return FetchResult{}, f.fail(callerMethod, rawURL, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseInvalidRequest,
			URL:       rawURL,
			Err:       err,
		})
	}

	startTime := time.Now()
	resp, err := f.httpClient.Execute(ctx, method, rawURL, f.requestHeaders(headers))
	if err != nil {
		return FetchResult{}, f.fail(callerMethod, rawURL, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: !errors.Is(err, context.Canceled),
			Cause:     ErrCauseTransport,
			URL:       rawURL,
			Err:       err,
		})
	}
	f.metadataSink.RecordFetch(
		rawURL,
		resp.StatusCode,
		time.Since(startTime),
		resp.Headers.Get("Content-Type"),
		len(resp.Body),
	)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return FetchResult{}, f.fail(callerMethod, rawURL, &FetchError{
			Message:    fmt.Sprintf("status %d is not accepted", resp.StatusCode),
			Retryable:  retryableStatus(resp.StatusCode),
			Cause:      ErrCauseInvalidResponseStatus,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
		})
	}

	if writeErr := f.webCache.Write(key, resp.Body); writeErr != nil {
		return FetchResult{}, f.fail(callerMethod, rawURL, &FetchError{
			Message:   writeErr.Error(),
			Retryable: failure.IsRecoverable(writeErr),
			Cause:     ErrCauseCache,
			URL:       rawURL,
			Err:       writeErr,
		})
	}

	return FetchResult{
		url:      rawURL,
		cacheKey: key,
		body:     resp.Body,
		meta: ResponseMeta{
			statusCode:      resp.StatusCode,
			responseHeaders: resp.Headers,
		},
	}, nil
}

// Get returns the body of a GET request.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, failure.ClassifiedError) {
	return f.GetWithMethod(ctx, http.MethodGet, rawURL)
}

func (f *Fetcher) GetWithMethod(ctx context.Context, method string, rawURL string) ([]byte, failure.ClassifiedError) {
	result, err := f.Fetch(ctx, method, rawURL)
	if err != nil {
		return nil, err
	}
	return result.Body(), nil
}

// GetText is Get decoded as UTF-8. Malformed input is an error, not
// replaced.
func (f *Fetcher) GetText(ctx context.Context, rawURL string) (string, failure.ClassifiedError) {
	body, err := f.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(body) {
		return "", f.fail("Fetcher.GetText", rawURL, &FetchError{
			Message:   "body is not valid UTF-8",
			Retryable: false,
			Cause:     ErrCauseInvalidText,
			URL:       rawURL,
		})
	}
	return string(body), nil
}

func (f *Fetcher) requestHeaders(override http.Header) http.Header {
	headers := f.defaultHeaders.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	for key, values := range override {
		headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}
	return headers
}

func (f *Fetcher) fail(callerMethod string, rawURL string, err *FetchError) *FetchError {
	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, rawURL),
	}
	if err.StatusCode != 0 {
		attrs = append(attrs, metadata.StatusAttr(err.StatusCode))
	}
	f.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		mapFetchErrorToMetadataCause(err),
		err.Error(),
		attrs,
	)
	return err
}
