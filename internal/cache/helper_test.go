package cache_test

import (
	"sync"
	"time"

	"github.com/rohmanhakim/web-scraper/internal/metadata"
)

type errorCall struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
	attrs       []metadata.Attribute
}

type artifactCall struct {
	kind  metadata.ArtifactKind
	path  string
	attrs []metadata.Attribute
}

// sinkSpy records every call it receives.
type sinkSpy struct {
	mu        sync.Mutex
	errors    []errorCall
	artifacts []artifactCall
	hits      []string
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
	s.errors = append(s.errors, errorCall{packageName, action, cause, details, attrs})
}

func (s *sinkSpy) RecordFetch(string, int, time.Duration, string, int) {}

func (s *sinkSpy) RecordCacheHit(cacheKey string, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = append(s.hits, cacheKey)
}

func (s *sinkSpy) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, artifactCall{kind, path, attrs})
}
