package extractor_test

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rohmanhakim/web-scraper/internal/extractor"
	"github.com/rohmanhakim/web-scraper/internal/fetcher"
	"github.com/rohmanhakim/web-scraper/internal/metadata"
)

type sinkSpy struct {
	metadata.NoopSink
	mu        sync.Mutex
	causes    []metadata.ErrorCause
	hits      []string
	artifacts []string
	fetches   []int
}

func (s *sinkSpy) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes = append(s.causes, cause)
}

func (s *sinkSpy) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, bodySize int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = append(s.fetches, httpStatus)
}

func (s *sinkSpy) RecordCacheHit(cacheKey string, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = append(s.hits, path)
}

func (s *sinkSpy) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == metadata.ArtifactExtractSnapshot {
		s.artifacts = append(s.artifacts, path)
	}
}

// clientSpy answers every request with the same response or error.
type clientSpy struct {
	mu       sync.Mutex
	response fetcher.Response
	err      error
	calls    int
}

func (c *clientSpy) Execute(ctx context.Context, method string, url string, headers http.Header) (fetcher.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return fetcher.Response{}, c.err
	}
	return c.response, nil
}

// extractorSpy counts calls and returns a fixed page.
type extractorSpy[T any] struct {
	result extractor.Extract[T]
	err    error
	calls  int
}

func (e *extractorSpy[T]) Extract(ctx context.Context, url string) (extractor.Extract[T], error) {
	e.calls++
	if e.err != nil {
		return extractor.Extract[T]{}, e.err
	}
	result := e.result
	result.Webpage.URL = url
	return result, nil
}
