package harperdb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("record not found")
	// ErrMissingField is matched by every *MissingFieldError.
	ErrMissingField = errors.New("missing field")
)

// NotFoundError is returned when a record the caller addressed by key does
// not exist on the server. It is detected from a successful response: an
// empty search result or a key reported in skipped_hashes.
type NotFoundError struct {
	Key    any
	Schema string
	Table  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %v not found in %s.%s", e.Key, e.Schema, e.Table)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MissingFieldError is returned when a record exists but lacks the
// requested field.
type MissingFieldError struct {
	Key   any
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %v has no field %q", e.Key, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
