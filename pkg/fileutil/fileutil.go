package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rohmanhakim/web-scraper/pkg/failure"
)

/*
Minimal file-store primitives for cache entries.

Writers never expose a partially written file under its final name:
content is staged in a sibling temp file and then linked into place,
which also fails when the final name already exists.
*/

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	target := filepath.Join(targetPath...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      target,
			Err:       err,
		}
	}
	return nil
}

// JoinSegments appends each segment to root as exactly one path element.
// A segment that is empty, "." / "..", or carries a separator is refused
// instead of silently producing a different path.
func JoinSegments(root string, segments ...string) (string, failure.ClassifiedError) {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, root)
	for _, segment := range segments {
		if segment == "" || segment == "." || segment == ".." ||
			strings.ContainsRune(segment, filepath.Separator) ||
			strings.ContainsRune(segment, '/') {
			return "", &FileError{
				Message:   fmt.Sprintf("segment %q cannot be used as a single path element", segment),
				Retryable: false,
				Cause:     ErrCauseInvalidSegment,
				Path:      root,
			}
		}
		parts = append(parts, segment)
	}
	return filepath.Join(parts...), nil
}

// MakeFile appends extension to base and returns the resulting file path.
// It fails when the extension would turn the result into a folder path.
func MakeFile(base string, extension string) (string, failure.ClassifiedError) {
	path := base + extension
	if base == "" ||
		strings.ContainsRune(extension, filepath.Separator) ||
		strings.ContainsRune(extension, '/') ||
		strings.HasSuffix(path, string(filepath.Separator)) {
		return "", &FileError{
			Message:   fmt.Sprintf("extension %q applied to %q does not name a file", extension, base),
			Retryable: false,
			Cause:     ErrCauseFileExtension,
			Path:      path,
		}
	}
	return path, nil
}

// ReadIfExists returns the file content and true, or false when nothing
// exists at path. Any other failure is returned as a *FileError.
func ReadIfExists(path string) ([]byte, bool, failure.ClassifiedError) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &FileError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseReadFailure,
			Path:      path,
			Err:       err,
		}
	}
	return data, true, nil
}

// WriteIfAbsent writes data to path unless a file already exists there.
// It reports whether the data was written. Parent folders are created.
func WriteIfAbsent(path string, data []byte) (bool, failure.ClassifiedError) {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return false, err
	}

	if _, err := os.Lstat(path); err == nil {
		return false, nil
	}

	temp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return false, writeError(path, err)
	}
	tempName := temp.Name()
	defer os.Remove(tempName)

	_, err = temp.Write(data)
	closeErr := temp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return false, writeError(path, err)
	}

	if err := os.Link(tempName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		if !linkUnsupported(err) {
			return false, writeError(path, err)
		}
		if renameErr := os.Rename(tempName, path); renameErr != nil {
			return false, writeError(path, renameErr)
		}
	}
	return true, nil
}

// linkUnsupported reports whether err means the filesystem cannot hard link.
func linkUnsupported(err error) bool {
	return errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.ENOTSUP) ||
		errors.Is(err, syscall.EXDEV)
}

// Delete removes the file at path. A missing file is not an error.
func Delete(path string) failure.ClassifiedError {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FileError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseDeleteFailure,
			Path:      path,
			Err:       err,
		}
	}
	return nil
}

func writeError(path string, err error) *FileError {
	cause := ErrCauseWriteFailure
	retryable := false
	if errors.Is(err, syscall.ENOSPC) {
		cause = ErrCauseDiskFull
		retryable = true
	}
	return &FileError{
		Message:   err.Error(),
		Retryable: retryable,
		Cause:     cause,
		Path:      path,
		Err:       err,
	}
}
