package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable error identifier returned to clients.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeStateConflict     Code = "STATE_CONFLICT"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeIdempotency       Code = "IDEMPOTENCY_KEY_REUSED"
	CodeIdempotencyBusy   Code = "IDEMPOTENCY_KEY_IN_PROGRESS"
	CodeRateLimit         Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependency        Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code is rendered over HTTP.
// ExposeMessage lets the error's own message replace PublicMessage.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	ExposeMessage  bool
}

func clientFault(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, DetailsAllowed: details, ExposeMessage: true}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:        clientFault(http.StatusBadRequest, "validation failed", true),
	CodeUnauthorized:      clientFault(http.StatusUnauthorized, "authentication required", false),
	CodeForbidden:         clientFault(http.StatusForbidden, "access denied", false),
	CodeNotFound:          clientFault(http.StatusNotFound, "resource not found", false),
	CodeConflict:          clientFault(http.StatusConflict, "conflict detected", false),
	CodeStateConflict:     clientFault(http.StatusUnprocessableEntity, "state transition disallowed", true),
	CodeInsufficientStock: clientFault(http.StatusConflict, "insufficient stock", true),
	CodeIdempotency:       clientFault(http.StatusConflict, "idempotency key reused", true),
	CodeRateLimit:         clientFault(http.StatusTooManyRequests, "rate limit exceeded", false),

	CodeIdempotencyBusy: {
		HTTPStatus:    http.StatusConflict,
		Retryable:     true,
		PublicMessage: "request with this idempotency key is still in progress",
		ExposeMessage: true,
	},

	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a coded error with an optional cause and client-facing details.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches code and message to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsCode reports whether err carries the given typed code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
