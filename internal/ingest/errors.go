package ingest

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound means the ingest source does not exist or is unreadable.
var ErrSourceNotFound = errors.New("source file not found")

// UnsupportedFormatError reports a file whose extension is not an accepted
// image format.
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("unsupported format: %s has no extension", e.Path)
	}
	return fmt.Sprintf("unsupported format %q for %s", e.Extension, e.Path)
}

// HashError reports an I/O failure while digesting a file.
type HashError struct {
	Path string
	Err  error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("failed to hash %s: %v", e.Path, e.Err)
}

func (e *HashError) Unwrap() error { return e.Err }
