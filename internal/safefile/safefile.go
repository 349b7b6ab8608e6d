// Package safefile opens and reads user-supplied files (logs, crash reports,
// rule files, config) with type and size checks.
package safefile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrNotRegularFile is returned for symlinks, FIFOs, devices, sockets and
	// directories.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrTooLarge is returned when a file exceeds the caller's size limit.
	ErrTooLarge = errors.New("file too large")
)

// OpenRegular opens path and verifies it is a regular file, both before and
// after opening, so a file swapped for a symlink or FIFO in between is still
// rejected.
//
// The caller must close the returned file.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	// Stat the descriptor, not the path.
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}

	return f, info, nil
}

// ReadRegular reads a whole regular file of at most maxBytes bytes.
// A file that grows past maxBytes between stat and read is still rejected.
func ReadRegular(path string, maxBytes int64) ([]byte, error) {
	f, info, err := OpenRegular(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

// SanitizePathError strips the path from an *os.PathError so error messages
// shown to users or returned over HTTP do not leak file system layout.
func SanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}
