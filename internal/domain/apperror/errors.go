package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error and decides its HTTP status.
type Kind string

const (
	KindValidation           Kind = "validation_error"
	KindUnauthorized         Kind = "unauthorized"
	KindInvalidCredentials   Kind = "invalid_credentials"
	KindNotFound             Kind = "not_found"
	KindDuplicateUser        Kind = "duplicate_user"
	KindInsufficientHoldings Kind = "insufficient_holdings"
	KindPriceUnavailable     Kind = "price_unavailable"
	KindUpstreamUnavailable  Kind = "upstream_unavailable"
	KindUnavailable          Kind = "unavailable"
	KindInternal             Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindValidation:           http.StatusBadRequest,
	KindUnauthorized:         http.StatusUnauthorized,
	KindInvalidCredentials:   http.StatusUnauthorized,
	KindNotFound:             http.StatusNotFound,
	KindDuplicateUser:        http.StatusConflict,
	KindInsufficientHoldings: http.StatusConflict,
	KindPriceUnavailable:     http.StatusBadGateway,
	KindUpstreamUnavailable:  http.StatusBadGateway,
	KindUnavailable:          http.StatusServiceUnavailable,
	KindInternal:             http.StatusInternalServerError,
}

// Error carries a Kind, a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets a copy made by WithDetails match the sentinel it came from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Details == nil && t.Err == nil && t.Kind == e.Kind && t.Message == e.Message
}

// WithDetails returns a copy of e carrying details. The original is not modified,
// so it is safe on the package sentinels.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, details any) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err (or anything it wraps) is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

// StatusOf maps any error to an HTTP status; unknown errors are 500.
func StatusOf(err error) int {
	if ae, ok := As(err); ok {
		return ae.Status()
	}
	return http.StatusInternalServerError
}

var (
	ErrInvalidCredentials   = New(KindInvalidCredentials, "invalid credentials")
	ErrUnauthorized         = New(KindUnauthorized, "unauthorized")
	ErrDuplicateUser        = New(KindDuplicateUser, "email already registered")
	ErrInsufficientHoldings = New(KindInsufficientHoldings, "insufficient holdings")
	ErrNotFound             = New(KindNotFound, "not found")
)
