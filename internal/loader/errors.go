package loader

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by Load. Match them with errors.Is.
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnreadableFile  = errors.New("unreadable file")
)

// Attempt records why one encoding could not produce a table.
type Attempt struct {
	Encoding string
	Err      error
}

// Error is returned by Load for every failure.
type Error struct {
	Kind     error
	Path     string
	Err      error
	Attempts []Attempt
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Kind)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Err: cause}
}
