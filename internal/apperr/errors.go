// Package apperr classifies failures so HTTP handlers can map them to
// status codes without leaking internal detail to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation"
	KindAuthentication  Kind = "authentication"
	KindForbidden       Kind = "forbidden"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal"
	KindDeliveryFailure Kind = "delivery_failure"
)

// Error carries a message that is safe to return to clients (PublicError)
// and one that is only meant for logs (InternalError).
type Error struct {
	Kind          Kind
	StatusCode    int
	PublicError   string
	InternalError string
	OriginalErr   error
}

func (e *Error) Error() string {
	if e.InternalError != "" {
		return e.InternalError
	}
	return e.PublicError
}

func (e *Error) Unwrap() error {
	return e.OriginalErr
}

func newError(kind Kind, status int, public string, err error) *Error {
	internal := public
	if err != nil {
		internal = fmt.Sprintf("%s: %v", public, err)
	}
	return &Error{
		Kind:          kind,
		StatusCode:    status,
		PublicError:   public,
		InternalError: internal,
		OriginalErr:   err,
	}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, http.StatusNotFound, fmt.Sprintf(format, args...), nil)
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, http.StatusBadRequest, fmt.Sprintf(format, args...), nil)
}

// Authentication is used for signature and token failures. Webhook callers
// expect 400 so the provider stops retrying a forged delivery.
func Authentication(public string, err error) *Error {
	return newError(KindAuthentication, http.StatusBadRequest, public, err)
}

func Unauthorized(public string, err error) *Error {
	return newError(KindAuthentication, http.StatusUnauthorized, public, err)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, http.StatusForbidden, fmt.Sprintf(format, args...), nil)
}

func Unavailable(public string, err error) *Error {
	return newError(KindUnavailable, http.StatusServiceUnavailable, public, err)
}

func Internal(public string, err error) *Error {
	return newError(KindInternal, http.StatusInternalServerError, public, err)
}

func DeliveryFailure(public string, err error) *Error {
	return newError(KindDeliveryFailure, http.StatusBadGateway, public, err)
}

// KindOf returns KindInternal for errors that were never classified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// PublicMessage never exposes the text of unclassified errors.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.PublicError
	}
	return "Internal server error"
}
