package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrValidation, ErrReferenceNotFound, ErrSlotConflict,
		ErrInvalidState, ErrPayloadMismatch, ErrOutOfWindow:
		return http.StatusBadRequest
	case ErrDoubleBooked:
		return http.StatusConflict
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrValidation
	ErrReferenceNotFound
	ErrSlotConflict
	ErrDoubleBooked
	ErrInvalidState
	ErrPayloadMismatch
	ErrOutOfWindow
	ErrTooManyRequests
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewValidation carries one message per offending field.
func NewValidation(message string, details map[string]string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Details: details,
	}
}

func NewReferenceNotFound(details map[string]string) *AppError {
	return &AppError{
		Code:    ErrReferenceNotFound,
		Message: "Invalid references",
		Details: details,
	}
}

func NewSlotConflict() *AppError {
	return &AppError{
		Code:    ErrSlotConflict,
		Message: "Time slot is already booked",
	}
}

func NewDoubleBooked(err error) *AppError {
	return &AppError{
		Code:    ErrDoubleBooked,
		Message: "Time slot is already booked",
		Err:     err,
	}
}

func NewInvalidState(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidState,
		Message: message,
	}
}

func NewPayloadMismatch() *AppError {
	return &AppError{
		Code:    ErrPayloadMismatch,
		Message: "QR code does not belong to this appointment",
	}
}

func NewOutOfWindow() *AppError {
	return &AppError{
		Code:    ErrOutOfWindow,
		Message: "appointment is not scheduled for today",
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func TooManyRequests() *AppError {
	return &AppError{
		Code:    ErrTooManyRequests,
		Message: "rate limit exceeded",
	}
}

// As extracts an *AppError from the chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
