package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrGuardNotMet = New(
		CodeGuardNotMet,
		"guard not met",
		http.StatusConflict,
	)

	ErrConcurrencyConflict = New(
		CodeConcurrencyConflict,
		"resource was modified by another request, reload and retry",
		http.StatusConflict,
	)
)

// GuardNotMet names the unmet precondition. The result matches ErrGuardNotMet with errors.Is.
func GuardNotMet(format string, args ...any) *AppError {
	return &AppError{
		Code:       CodeGuardNotMet,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusConflict,
		Err:        ErrGuardNotMet,
	}
}

func RequiredField(field string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    field + " is required",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]string{"field": field, "rule": "required"},
	}
}

func InvalidField(field string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    field + " is invalid",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]string{"field": field, "rule": "invalid"},
	}
}
