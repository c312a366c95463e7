package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that callers can match on by code.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is reports whether target is an AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	if e == nil {
		return false
	}
	var other *AppError
	if !errors.As(target, &other) || other == nil {
		return false
	}
	return e.Code == other.Code
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy of the AppError with a more specific message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Message = message
	return &cpy
}

// Error taxonomy shared by the cache engine and its callers.
var (
	ErrDuplicateKey = &AppError{
		Code:       "cache.duplicate_key",
		Message:    "Key already exists",
		StatusCode: http.StatusConflict,
	}

	ErrTransferFailed = &AppError{
		Code:       "cache.transfer_failed",
		Message:    "Failed to transfer file into the cache",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrStoreUnavailable = &AppError{
		Code:       "cache.store_unavailable",
		Message:    "Metadata store unavailable",
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrInvalidArgument = &AppError{
		Code:       "cache.invalid_argument",
		Message:    "Invalid argument",
		StatusCode: http.StatusBadRequest,
	}

	ErrFolderLocked = &AppError{
		Code:       "cache.folder_locked",
		Message:    "Cache folder is owned by another instance",
		StatusCode: http.StatusLocked,
	}

	ErrNotFound = &AppError{
		Code:       "cache.not_found",
		Message:    "Entry not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "Internal error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, status int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: status,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       ErrInternal.Code,
		Message:    message,
		StatusCode: ErrInternal.StatusCode,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternal.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternal.WithInternal(err)
}

// NewInvalidArgument wraps argument validation failures with a helpful message.
func NewInvalidArgument(message string) *AppError {
	return ErrInvalidArgument.WithMessage(message)
}
