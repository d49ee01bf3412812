package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/web-scraper/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError      FileErrorCause = "path error"
	ErrCauseInvalidSegment FileErrorCause = "invalid path segment"
	ErrCauseFileExtension  FileErrorCause = "extension makes the path a folder"
	ErrCauseReadFailure    FileErrorCause = "read failed"
	ErrCauseWriteFailure   FileErrorCause = "write failed"
	ErrCauseDeleteFailure  FileErrorCause = "delete failed"
	ErrCauseDiskFull       FileErrorCause = "disk is full"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
	Path      string
	Err       error
}

func (e *FileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("file error: %s", e.Cause)
	}
	return fmt.Sprintf("file error: %s: %s", e.Cause, e.Path)
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FileError) Unwrap() error {
	return e.Err
}
