package scrape

import (
	"fmt"

	"github.com/rohmanhakim/web-scraper/pkg/failure"
)

type ScrapeErrorCause string

const (
	ErrCauseInvalidSelection            ScrapeErrorCause = "invalid selection"
	ErrCauseExpectedOneGotNone          ScrapeErrorCause = "expected one, got none"
	ErrCauseExpectedOneGotMultiple      ScrapeErrorCause = "expected one, got multiple"
	ErrCauseExpectedOptionalGotMultiple ScrapeErrorCause = "expected one or none, got multiple"
	ErrCauseParseFailure                ScrapeErrorCause = "document parse failed"
	ErrCauseRenderFailure               ScrapeErrorCause = "render failed"
)

// ScrapeError is a data-shape or programming error, never a transport one.
// None of them are retryable: the same markup yields the same error.
type ScrapeError struct {
	Message   string
	Cause     ScrapeErrorCause
	Selector  string
	Attribute string
	Err       error
}

func (e *ScrapeError) Error() string {
	switch {
	case e.Cause == ErrCauseInvalidSelection:
		return fmt.Sprintf("scrape error: invalid selection '%s': %s", e.Selector, e.Message)
	case e.Attribute != "":
		return fmt.Sprintf("scrape error: %s: %s[%s]", e.Cause, e.Selector, e.Attribute)
	case e.Selector != "":
		return fmt.Sprintf("scrape error: %s: %s", e.Cause, e.Selector)
	default:
		return fmt.Sprintf("scrape error: %s: %s", e.Cause, e.Message)
	}
}

func (e *ScrapeError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsCardinality reports whether the error is about how many elements
// matched, as opposed to a bad selector or a render failure.
func (e *ScrapeError) IsCardinality() bool {
	switch e.Cause {
	case ErrCauseExpectedOneGotNone, ErrCauseExpectedOneGotMultiple, ErrCauseExpectedOptionalGotMultiple:
		return true
	default:
		return false
	}
}
