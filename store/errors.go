package store

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is returned when a raw record cannot be converted into a
// sample. Row is the zero-based position of the record in the input, Field
// names the offending column.
type ErrInvalidRecord struct {
	Row    int
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ErrInvalidRecord) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid record at row %d, field %q: %s: %v", e.Row, e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid record at row %d, field %q: %s", e.Row, e.Field, e.Reason)
}

// Unwrap returns the underlying parse error, if any.
func (e *ErrInvalidRecord) Unwrap() error { return e.Err }

// ErrDimensionMismatch is returned when a sample's feature count does not
// match the store's dimensionality.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

// Error implements the error interface.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrSnapshotCorrupted is returned when a snapshot fails structural
// validation during decode.
type ErrSnapshotCorrupted struct {
	Reason string
}

// Error implements the error interface.
func (e *ErrSnapshotCorrupted) Error() string {
	return fmt.Sprintf("snapshot corrupted: %s", e.Reason)
}

// ErrClosed is returned when operating on a closed store.
var ErrClosed = errors.New("store is closed")
