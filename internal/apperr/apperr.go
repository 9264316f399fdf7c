// Package apperr classifies failures of the order core. Every rejection
// carries a Kind, which decides the HTTP status, and a stable Reason that
// clients can match on.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindPermission      Kind = "permission"
	KindUnauthenticated Kind = "unauthenticated"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Context map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// With attaches a context value that is returned to the caller alongside
// the rejection.
func (e *Error) With(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func newError(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

func Validation(reason, message string) *Error {
	return newError(KindValidation, reason, message)
}

func NotFound(reason, message string) *Error {
	return newError(KindNotFound, reason, message)
}

func Permission(reason, message string) *Error {
	return newError(KindPermission, reason, message)
}

func Unauthenticated(reason, message string) *Error {
	return newError(KindUnauthenticated, reason, message)
}

func Conflict(reason, message string) *Error {
	return newError(KindConflict, reason, message)
}

func Internal(reason, message string, err error) *Error {
	e := newError(KindInternal, reason, message)
	e.Err = err
	return e
}

// As returns the classified error in the chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// ReasonOf returns "internal_error" for unclassified errors.
func ReasonOf(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Reason
	}
	return ReasonInternal
}

// IsKind reports whether err is classified with kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
