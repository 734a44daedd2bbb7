package history

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested event id is not retained.
	ErrNotFound = errors.New("event not found")

	// ErrEmptyType is returned when a payload has an empty type tag.
	ErrEmptyType = errors.New("payload type tag is empty")
)

// StorageError reports a failure of the durable store. Prior history is
// left intact when one is returned from an insert.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageFault reports whether err is or wraps a *StorageError.
func IsStorageFault(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
