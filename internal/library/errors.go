package library

import (
	"errors"
	"fmt"
)

// ErrInvalidFilename means the requested filename was blank.
var ErrInvalidFilename = errors.New("filename cannot be empty")

// NameConflictError means another record already uses the resolved filename.
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("filename %q is already in use", e.Name)
}
