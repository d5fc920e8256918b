// Package cubeerr defines the small, closed set of error kinds the core
// pipeline can fail with. Every failure that unwinds out of pkg/cube,
// pkg/header, pkg/kernels, pkg/scfind or pkg/linker wraps one of these
// sentinels so callers can branch with errors.Is instead of parsing strings.
package cubeerr

import (
	"errors"
	"fmt"
)

var (
	// ErrUserInput marks an invalid argument shape or an out-of-range value.
	ErrUserInput = errors.New("invalid user input")

	// ErrIndexRange marks a coordinate or label outside declared bounds.
	ErrIndexRange = errors.New("index out of range")

	// ErrKeyMissing marks a header key that is not present.
	ErrKeyMissing = errors.New("header key missing")

	// ErrFileAccess marks a failed open/seek/read/write, or a denied overwrite.
	ErrFileAccess = errors.New("file access error")

	// ErrFormat marks an invalid FITS-subset structure.
	ErrFormat = errors.New("invalid format")

	// ErrNoMemory marks an allocation failure.
	ErrNoMemory = errors.New("allocation failed")

	// ErrNullPtr marks an internal defensive check failing; it indicates a bug.
	ErrNullPtr = errors.New("internal nil reference")
)

// Wrap attaches msg as context to kind, preserving errors.Is(err, kind).
func Wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Wrapf is Wrap with fmt.Sprintf-style formatting of msg.
func Wrapf(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }
