// Package herr defines the error taxonomy shared by every cell and backend
// operation in treenav. It plays the role of the original hial project's
// error cell: rather than a first-class failing Cell variant, Go's native
// error value carries the same eight kinds and the same lazily attached
// cell-path breadcrumb, unwrapped through the standard errors.Unwrap chain.
package herr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// KindNone marks an expected absence, not a failure: a field that is
	// semantically not present, a group index out of range. Callers use
	// IsNone to distinguish "not found" from real errors.
	KindNone Kind = iota
	KindUser
	KindIO
	KindNet
	KindInternal
	KindReadOnly
	KindCannotLock
	KindInvalidFormat
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUser:
		return "user"
	case KindIO:
		return "io"
	case KindNet:
		return "net"
	case KindInternal:
		return "internal"
	case KindReadOnly:
		return "read-only"
	case KindCannotLock:
		return "cannot-lock"
	case KindInvalidFormat:
		return "invalid-format"
	default:
		return "unknown"
	}
}

// Err is the concrete error type produced throughout treenav.
type Err struct {
	Kind  Kind
	Msg   string
	Cause error
	// Path is a breadcrumb of the cell path where the error was observed.
	// It is set once, at the first frame that knows its own path, and
	// never overwritten afterward (WithPath is a no-op if already set).
	Path string
}

func (e *Err) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Err) Unwrap() error { return e.Cause }

// WithPath attaches a cell-path breadcrumb the first time it is called.
func (e *Err) WithPath(path string) *Err {
	if e.Path == "" {
		e.Path = path
	}
	return e
}

func New(kind Kind, msg string) *Err {
	return &Err{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Err {
	return &Err{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap records cause as the wrapped error behind a new message, Go's
// idiomatic stand-in for the original's Box<dyn Error> cause field.
func Wrap(kind Kind, cause error, msg string) *Err {
	return &Err{Kind: kind, Msg: msg, Cause: cause}
}

// NoRes builds the "absent, not an error" result used for missing fields,
// empty groups and not-found lookups.
func NoRes(msg string) *Err { return New(KindNone, msg) }

func UserErr(msg string) *Err       { return New(KindUser, msg) }
func UserErrf(f string, a ...any) *Err { return Newf(KindUser, f, a...) }
func IOErr(msg string, cause error) *Err  { return Wrap(KindIO, cause, msg) }
func NetErr(msg string, cause error) *Err { return Wrap(KindNet, cause, msg) }
func ReadOnlyErr(msg string) *Err   { return New(KindReadOnly, msg) }
func CannotLockErr(msg string) *Err { return New(KindCannotLock, msg) }
func InvalidFormatErr(msg string, cause error) *Err {
	return Wrap(KindInvalidFormat, cause, msg)
}

// Internal marks an invariant violation. In debug builds (built with
// -tags debug) it panics immediately, mirroring faulterr()'s
// cfg!(debug_assertions) behavior; in release builds it is returned like
// any other error.
func Internal(msg string) *Err {
	e := New(KindInternal, msg)
	maybePanic(e)
	return e
}

func Internalf(format string, args ...any) *Err {
	return Internal(fmt.Sprintf(format, args...))
}

// IsNone reports whether err (or something it wraps) is a KindNone result.
func IsNone(err error) bool {
	if err == nil {
		return false
	}
	var e *Err
	if errors.As(err, &e) {
		return e.Kind == KindNone
	}
	return false
}

// KindOf extracts the Kind of err, defaulting to KindInternal for errors
// that did not originate in this package.
func KindOf(err error) Kind {
	var e *Err
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
