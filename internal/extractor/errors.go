package extractor

import (
	"fmt"

	"github.com/rohmanhakim/web-scraper/internal/metadata"
	"github.com/rohmanhakim/web-scraper/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseSetup     ExtractionErrorCause = "setup"
	ErrCauseDownload  ExtractionErrorCause = "download"
	ErrCauseParse     ExtractionErrorCause = "parse"
	ErrCauseExecution ExtractionErrorCause = "execution"
	ErrCauseCache     ExtractionErrorCause = "cache"
	ErrCauseNoContent ExtractionErrorCause = "no content"
)

type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
	URL       string
	Err       error
}

func (e *ExtractionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("extraction error: %s: %s: %s", e.Cause, e.URL, e.Message)
	}
	return fmt.Sprintf("extraction error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ExtractionError) IsRetryable() bool {
	return e.Retryable
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// mapExtractionErrorToMetadataCause maps extractor-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDownload:
		return metadata.CauseNetworkFailure
	case ErrCauseParse, ErrCauseNoContent:
		return metadata.CauseContentInvalid
	case ErrCauseCache:
		return metadata.CauseStorageFailure
	case ErrCauseSetup:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
