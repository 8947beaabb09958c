package gen

import (
	"errors"
	"fmt"
)

// Sentinel errors for generation failures.
var (
	// ErrTarget indicates an unusable output destination.
	ErrTarget = errors.New("gen: invalid target directory")
	// ErrWrite indicates an artifact write failure.
	ErrWrite = errors.New("gen: artifact write failed")
)

// TargetError reports an output destination that is missing or not a
// directory. Generation aborts before any artifact is produced.
type TargetError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *TargetError) Error() string {
	return fmt.Sprintf("gen: target %q: %s", e.Path, e.Message)
}

// Is reports whether the target matches the sentinel for TargetError.
func (e *TargetError) Is(target error) bool { return target == ErrTarget }

// NewTargetError creates a new TargetError.
func NewTargetError(path, message string) *TargetError {
	return &TargetError{Path: path, Message: message}
}

// WriteError reports a failed artifact write. A short write is a hard
// failure carried the same way as a create or write error.
type WriteError struct {
	Name  string
	Cause error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("gen: writing %q: %s", e.Name, e.Cause)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel for WriteError.
func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// NewWriteError creates a new WriteError.
func NewWriteError(name string, cause error) *WriteError {
	return &WriteError{Name: name, Cause: cause}
}

// IsTargetError reports whether err is a target error.
func IsTargetError(err error) bool { return errors.Is(err, ErrTarget) }

// IsWriteError reports whether err is an artifact write error.
func IsWriteError(err error) bool { return errors.Is(err, ErrWrite) }
