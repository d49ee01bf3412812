package metadata

import (
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

/*
Recorder captures structured events of the cache, fetcher and extractor
and writes them as logrus fields.

It must not:
- perform I/O decisions
- affect control flow

Metadata is write-only. No component reads it back.
*/
type Recorder struct {
	workerId string
	logger   logrus.FieldLogger
}

// NewRecorder returns a Recorder writing through logger. A nil logger
// falls back to the logrus standard logger.
func NewRecorder(workerId string, logger logrus.FieldLogger) *Recorder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Recorder{
		workerId: workerId,
		logger:   logger,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	fields := r.fields(attrs)
	fields["observed_at"] = observedAt.Format(time.RFC3339Nano)
	fields["package"] = packageName
	fields["action"] = action
	fields["cause"] = cause.String()
	r.logger.WithFields(fields).Error(details)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	bodySize int,
) {
	fields := r.fields(nil)
	fields["action"] = "fetch"
	fields[string(AttrURL)] = fetchUrl
	fields[string(AttrHTTPStatus)] = httpStatus
	fields["duration_ms"] = duration.Milliseconds()
	fields["content_type"] = contentType
	fields["body_size"] = bodySize
	r.logger.WithFields(fields).Info("fetched")
}

func (r *Recorder) RecordCacheHit(cacheKey string, path string) {
	fields := r.fields(nil)
	fields["action"] = "cache_hit"
	fields["cache_hit"] = true
	fields[string(AttrCacheKey)] = cacheKey
	fields[string(AttrPath)] = path
	r.logger.WithFields(fields).Debug("served from cache")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	fields := r.fields(attrs)
	fields["action"] = "artifact"
	fields["kind"] = string(kind)
	fields[string(AttrPath)] = path
	r.logger.WithFields(fields).Debug("artifact written")
}

func (r *Recorder) fields(attrs []Attribute) logrus.Fields {
	fields := logrus.Fields{"worker": r.workerId}
	for _, attr := range attrs {
		fields[string(attr.Key)] = attr.Value
	}
	return fields
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		bodySize int,
	)
	RecordCacheHit(cacheKey string, path string)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

// NoopSink implements MetadataSink but does nothing.
// Callers (or tests) decide whether to inject a Recorder or a NoopSink.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	bodySize int,
) {
}

func (n *NoopSink) RecordCacheHit(cacheKey string, path string) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

// StatusAttr renders an HTTP status code as an attribute.
func StatusAttr(status int) Attribute {
	return NewAttr(AttrHTTPStatus, strconv.Itoa(status))
}
