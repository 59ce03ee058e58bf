package storage

import (
	"errors"
	"fmt"
)

var errNullDocument = errors.New("document is null")

// CorruptDataError is returned when a collection file exists but does not
// decode into the collection's schema. It is never repaired automatically.
type CorruptDataError struct {
	Collection string
	Path       string
	Err        error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("storage: corrupt %s document at %s: %v", e.Collection, e.Path, e.Err)
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

// StorageIOError wraps filesystem failures while reading or replacing a collection file.
type StorageIOError struct {
	Collection string
	Path       string
	Op         string
	Err        error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("storage: %s %s (%s): %v", e.Op, e.Collection, e.Path, e.Err)
}

func (e *StorageIOError) Unwrap() error {
	return e.Err
}

func IsCorruptData(err error) bool {
	var target *CorruptDataError
	return errors.As(err, &target)
}

func IsStorageIO(err error) bool {
	var target *StorageIOError
	return errors.As(err, &target)
}
