package store

import "fmt"

// ErrorKind classifies storage failures.
type ErrorKind string

const (
	KindInit    ErrorKind = "init"    // data directory cannot be created or opened
	KindRead    ErrorKind = "read"    // document exists but cannot be read
	KindWrite   ErrorKind = "write"   // overwrite failed
	KindCorrupt ErrorKind = "corrupt" // document is malformed (strict mode only)
)

// StorageError represents store-specific errors.
type StorageError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	msg := fmt.Sprintf("storage %s error", e.Kind)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches any StorageError of the same kind against the bare sentinels
// below, so callers can write errors.Is(err, store.ErrCorrupt).
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok || t.Path != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Common storage errors, for use with errors.Is.
var (
	ErrInit    = &StorageError{Kind: KindInit}
	ErrRead    = &StorageError{Kind: KindRead}
	ErrWrite   = &StorageError{Kind: KindWrite}
	ErrCorrupt = &StorageError{Kind: KindCorrupt}
)
