package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/web-scraper/internal/metadata"
	"github.com/rohmanhakim/web-scraper/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseInvalidRequest        FetchErrorCause = "invalid request"
	ErrCauseTransport             FetchErrorCause = "transport failure"
	ErrCauseInvalidResponseStatus FetchErrorCause = "invalid response status"
	ErrCauseInvalidText           FetchErrorCause = "invalid text"
	ErrCauseCache                 FetchErrorCause = "cache failure"
)

// FetchError is never retried by the fetcher itself. Retryable is a hint
// for callers layering their own retry policy.
type FetchError struct {
	Message    string
	Retryable  bool
	Cause      FetchErrorCause
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Cause == ErrCauseInvalidResponseStatus {
		return fmt.Sprintf("fetcher error: %s %d: %s", e.Cause, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// retryableStatus marks statuses a caller may reasonably try again.
func retryableStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseInvalidRequest:
		return metadata.CauseRequestInvalid
	case ErrCauseTransport:
		return metadata.CauseNetworkFailure
	case ErrCauseInvalidResponseStatus, ErrCauseInvalidText:
		return metadata.CauseContentInvalid
	case ErrCauseCache:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
