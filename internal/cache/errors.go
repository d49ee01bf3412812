package cache

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/web-scraper/internal/metadata"
	"github.com/rohmanhakim/web-scraper/pkg/failure"
	"github.com/rohmanhakim/web-scraper/pkg/fileutil"
)

type CacheErrorCause string

const (
	ErrCauseNoRoot        CacheErrorCause = "no cache root configured"
	ErrCausePathInvalid   CacheErrorCause = "entry path is invalid"
	ErrCauseReadFailure   CacheErrorCause = "read failed"
	ErrCauseWriteFailure  CacheErrorCause = "write failed"
	ErrCauseDeleteFailure CacheErrorCause = "delete failed"
	ErrCauseDiskFull      CacheErrorCause = "disk is full"
)

type CacheError struct {
	Message   string
	Retryable bool
	Cause     CacheErrorCause
	Path      string
	Err       error
}

func (e *CacheError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cache error: %s: %s", e.Cause, e.Message)
	}
	return fmt.Sprintf("cache error: %s: %s", e.Cause, e.Path)
}

func (e *CacheError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// fromFileError lifts a fileutil failure into a CacheError. fallback is
// used for file causes that have no more precise cache cause.
func fromFileError(err error, fallback CacheErrorCause) *CacheError {
	cacheErr := &CacheError{
		Message: err.Error(),
		Cause:   fallback,
		Err:     err,
	}
	var fileErr *fileutil.FileError
	if errors.As(err, &fileErr) {
		cacheErr.Path = fileErr.Path
		cacheErr.Retryable = fileErr.Retryable
		switch fileErr.Cause {
		case fileutil.ErrCauseInvalidSegment, fileutil.ErrCauseFileExtension:
			cacheErr.Cause = ErrCausePathInvalid
		case fileutil.ErrCauseDiskFull:
			cacheErr.Cause = ErrCauseDiskFull
		}
	}
	return cacheErr
}

// mapCacheErrorToMetadataCause maps cache-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapCacheErrorToMetadataCause(err *CacheError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNoRoot, ErrCausePathInvalid:
		return metadata.CauseInvariantViolation
	case ErrCauseReadFailure, ErrCauseWriteFailure, ErrCauseDeleteFailure, ErrCauseDiskFull:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
