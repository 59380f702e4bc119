package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind buckets application errors into the classes the HTTP layer
// knows how to translate.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
	KindConfiguration
	KindInternal
)

// AppError carries the kind alongside a user-safe message. Wrapped causes
// are preserved for logging but never serialized to clients.
type AppError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return fiber.StatusBadRequest
	case KindAuth:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func NewValidationError(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

func NewAuthError(msg string) *AppError {
	return &AppError{Kind: KindAuth, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func NewConflictError(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

// NewUpstreamError marks a payment-processor failure. Callers generally
// degrade instead of surfacing this to the end customer.
func NewUpstreamError(msg string, cause error) *AppError {
	return &AppError{Kind: KindUpstream, Message: msg, cause: cause}
}

// NewConfigurationError marks a missing required secret or setting.
func NewConfigurationError(msg string) *AppError {
	return &AppError{Kind: KindConfiguration, Message: msg}
}

// AsAppError unwraps err into an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
