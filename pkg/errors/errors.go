package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrUnavailable
)

// Scheduling error codes
const (
	ErrInvalidDate ErrorCode = iota + 2000
	ErrNonWorkingDay
	ErrInvalidSlot
	ErrSlotTaken
	ErrInvalidFilter
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// StatusCode maps the error code to the HTTP status surfaced to clients.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrInvalidDate, ErrNonWorkingDay, ErrInvalidSlot, ErrInvalidFilter:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrSlotTaken:
		return http.StatusConflict
	case ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

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

func NewUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrUnavailable,
		Message: "service temporarily unavailable",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// Scheduling error constructors
func NewInvalidDate(message string) *AppError {
	return &AppError{Code: ErrInvalidDate, Message: message}
}

func NewNonWorkingDay(message string) *AppError {
	return &AppError{Code: ErrNonWorkingDay, Message: message}
}

func NewInvalidSlot(message string) *AppError {
	return &AppError{Code: ErrInvalidSlot, Message: message}
}

func NewSlotTaken() *AppError {
	return &AppError{Code: ErrSlotTaken, Message: "time slot already booked"}
}

func NewInvalidFilter(message string) *AppError {
	return &AppError{Code: ErrInvalidFilter, Message: message}
}

// Is reports whether err carries the given application error code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool  { return Is(err, ErrNotFound) }
func IsSlotTaken(err error) bool { return Is(err, ErrSlotTaken) }
