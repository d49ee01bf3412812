package fetcher_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/web-scraper/internal/cache"
	"github.com/rohmanhakim/web-scraper/internal/fetcher"
	"github.com/rohmanhakim/web-scraper/internal/metadata"
	"github.com/stretchr/testify/require"
)

type request struct {
	method  string
	url     string
	headers http.Header
}

// clientSpy is an HttpClient returning a canned response or error.
type clientSpy struct {
	mu       sync.Mutex
	response fetcher.Response
	err      error
	requests []request
	delay    time.Duration
}

func (c *clientSpy) Execute(ctx context.Context, method string, url string, headers http.Header) (fetcher.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, request{method, url, headers})
	c.mu.Unlock()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return fetcher.Response{}, c.err
	}
	return c.response, nil
}

func (c *clientSpy) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

type fetchEvent struct {
	fetchUrl    string
	httpStatus  int
	contentType string
	bodySize    int
}

type errorEvent struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
	attrs       []metadata.Attribute
}

type sinkSpy struct {
	mu             sync.Mutex
	fetchEvents    []fetchEvent
	errorEvents    []errorEvent
	cacheHits      []string
	artifactEvents []string
}

func (m *sinkSpy) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, bodySize int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchEvents = append(m.fetchEvents, fetchEvent{fetchUrl, httpStatus, contentType, bodySize})
}

func (m *sinkSpy) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorEvents = append(m.errorEvents, errorEvent{packageName, action, cause, details, attrs})
}

func (m *sinkSpy) RecordCacheHit(cacheKey string, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits = append(m.cacheHits, cacheKey)
}

func (m *sinkSpy) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifactEvents = append(m.artifactEvents, path)
}

func newTestCache(t *testing.T) *cache.WebCache {
	t.Helper()
	webCache, err := cache.NewWebCache(t.TempDir(), "", &metadata.NoopSink{})
	require.NoError(t, err)
	return webCache
}
