// Package apperr defines the error taxonomy shared by the pipeline and the
// HTTP layer. Every failure the service surfaces to a caller is one of the
// kinds below; anything else is treated as internal.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// KindInternal is the zero value: an unexpected failure.
	KindInternal Kind = iota
	// KindValidation covers caller mistakes: bad file type, malformed or
	// out-of-window dates, missing parameters, unparseable documents.
	KindValidation
	// KindNotFound covers lookups of unknown entities.
	KindNotFound
	// KindExternal covers upstream failures such as the rate fetch.
	KindExternal
	// KindPersistence covers storage failures; the transaction is rolled
	// back in full before the error propagates.
	KindPersistence
)

// Error carries a kind alongside the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind without a cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Validation creates a KindValidation error.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// External creates a KindExternal error wrapping cause.
func External(cause error, format string, args ...any) *Error {
	return Wrap(KindExternal, cause, format, args...)
}

// Persistence creates a KindPersistence error wrapping cause.
func Persistence(cause error, format string, args ...any) *Error {
	return Wrap(KindPersistence, cause, format, args...)
}

// KindOf extracts the kind from err, walking the wrap chain.
// Unclassified errors report KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsBusiness reports whether err is a caller-caused failure that should
// surface as a 4xx response.
func IsBusiness(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindNotFound, KindExternal:
		return true
	default:
		return false
	}
}
