package payrollexceptionerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidExceptionID = apperror.New(
		apperror.CodeValidation,
		"invalid exception id",
		http.StatusBadRequest,
	)
	ErrExceptionNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll exception not found",
		http.StatusNotFound,
	)
	ErrAlreadyResolved = apperror.New(
		apperror.CodeInvalidState,
		"payroll exception is already resolved",
		http.StatusConflict,
	)
	ErrNotOpen = apperror.New(
		apperror.CodeInvalidState,
		"only open exceptions can be started",
		http.StatusConflict,
	)
	ErrNotesRequired = apperror.New(
		apperror.CodeValidation,
		"resolution notes are required",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeValidation,
		"invalid exception status filter",
		http.StatusBadRequest,
	)
	ErrInvalidSeverityFilter = apperror.New(
		apperror.CodeValidation,
		"invalid exception severity filter",
		http.StatusBadRequest,
	)
	ErrMissingEmployeeReference = apperror.New(
		apperror.CodeConfiguration,
		"draft line without employee reference",
		http.StatusUnprocessableEntity,
	)
)
