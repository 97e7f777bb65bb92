package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels shared by the domain and storage layers. Callers wrap them with
// %w and the API layer turns them into a status through HTTPStatus.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation failed")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrConflict        = errors.New("resource conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrDatabase        = errors.New("database error")
	ErrInternalServer  = errors.New("internal server error")
)

var statusBySentinel = []struct {
	sentinel error
	status   int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrInvalidArgument, http.StatusBadRequest},
	{ErrValidation, http.StatusBadRequest},
	{ErrAlreadyExists, http.StatusConflict},
	{ErrConflict, http.StatusConflict},
	{ErrUnauthorized, http.StatusUnauthorized},
}

// HTTPStatus returns the status of the first sentinel err wraps, or 500.
func HTTPStatus(err error) int {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.sentinel) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// ValidationError names the request field that was rejected. It always
// matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AppError carries a machine-readable code for failures that are logged
// rather than shown to clients.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return "[" + e.Code + "] " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

const CodeDatabase = "DB_ERROR"

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    CodeDatabase,
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}
