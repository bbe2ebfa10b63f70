package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound means no record matched the lookup.
	ErrNotFound = errors.New("image not found")

	// ErrDuplicateHash means a record with the same content hash exists.
	ErrDuplicateHash = errors.New("image with this hash already exists")

	// ErrDuplicatePath means a record with the same stored path exists.
	ErrDuplicatePath = errors.New("image with this path already exists")
)

// ConstraintError wraps a uniqueness violation the driver did not attribute
// to a known column.
type ConstraintError struct {
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation: %v", e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// constraintError maps SQLite unique-constraint failures onto the typed
// errors above; anything else is wrapped as a plain insert failure.
func constraintError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "images.hash"):
			return ErrDuplicateHash
		case strings.Contains(msg, "images.path"):
			return ErrDuplicatePath
		}
		return &ConstraintError{Err: err}
	}
	return fmt.Errorf("failed to write image record: %w", err)
}
