// Package errs defines the registry's error taxonomy. Every component maps its
// lower-level failures (SQL constraint violations, S3 transport errors, JWT
// parse errors) into one of these kinds at its own boundary, so callers only
// ever see taxonomy errors with a human-readable detail string.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into the registry taxonomy.
type Kind int

const (
	// KindInternal is the fallback for anything not classified below.
	KindInternal Kind = iota
	// KindNotFound indicates a missing user, package, version or token.
	KindNotFound
	// KindAlreadyExists indicates a uniqueness-constraint collision.
	KindAlreadyExists
	// KindForbidden indicates the actor is known but not allowed.
	KindForbidden
	// KindUnauthenticated indicates missing or invalid credentials.
	KindUnauthenticated
	// KindPackage indicates a malformed uploaded archive or manifest.
	KindPackage
	// KindStorage indicates a blob-backend or transport failure.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPackage:
		return "package_error"
	case KindStorage:
		return "storage_error"
	default:
		return "internal"
	}
}

// HTTPStatus returns the fixed HTTP status for this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindPackage:
		return http.StatusBadRequest
	case KindStorage:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error is a taxonomy error. Detail is returned verbatim to the caller; Err
// carries the wrapped cause for logs only and is never serialized.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a taxonomy error with a detail message.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf creates a taxonomy error with a formatted detail message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap creates a taxonomy error that carries an underlying cause.
func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// NotFound reports whether err is a KindNotFound taxonomy error.
func NotFound(err error) bool { return KindOf(err) == KindNotFound }

// AlreadyExists reports whether err is a KindAlreadyExists taxonomy error.
func AlreadyExists(err error) bool { return KindOf(err) == KindAlreadyExists }

// Forbidden reports whether err is a KindForbidden taxonomy error.
func Forbidden(err error) bool { return KindOf(err) == KindForbidden }

// Unauthenticated reports whether err is a KindUnauthenticated taxonomy error.
func Unauthenticated(err error) bool { return KindOf(err) == KindUnauthenticated }

// KindOf extracts the taxonomy kind from err, or KindInternal if err is not a
// taxonomy error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Detail extracts the caller-visible detail string from err. Non-taxonomy
// errors yield a generic message so internal detail never leaks.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "internal server error"
}
