package mdconvert

import (
	"fmt"

	"github.com/rohmanhakim/web-scraper/pkg/failure"
)

type ConversionErrorCause string

const (
	ErrCauseNilNode           ConversionErrorCause = "nil node"
	ErrCauseConversionFailure ConversionErrorCause = "conversion failed"
)

type ConversionError struct {
	Message   string
	Retryable bool
	Cause     ConversionErrorCause
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error: %s: %s", e.Cause, e.Message)
}

func (e *ConversionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
