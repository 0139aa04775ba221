package payrollrunerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidRunID = apperror.New(
		apperror.CodeValidation,
		"invalid payroll run id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeValidation,
		"period_start must be before period_end",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrUnknownEvent = apperror.New(
		apperror.CodeValidation,
		"unknown payroll run event",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeValidation,
		"reason is required for this event",
		http.StatusBadRequest,
	)
	ErrUsePeriodEndpoint = apperror.New(
		apperror.CodeValidation,
		"period edits must go through the period endpoint",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeValidation,
		"invalid payroll run status filter",
		http.StatusBadRequest,
	)
	ErrRoleNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"role is not allowed to perform this event",
		http.StatusForbidden,
	)
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrLineItemNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll line item not found",
		http.StatusNotFound,
	)
	ErrRunNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"payroll run is not under review",
		http.StatusConflict,
	)
	ErrConcurrentUpdate = apperror.Wrap(
		apperror.ErrConcurrencyConflict,
		apperror.CodeConcurrencyConflict,
		"payroll run was modified by another request",
		http.StatusConflict,
	)
	ErrDraftInProgress = apperror.Wrap(
		apperror.ErrGuardNotMet,
		apperror.CodeGuardNotMet,
		"draft generation is already in progress",
		http.StatusConflict,
	)
	ErrPeriodOverlap = apperror.New(
		apperror.CodeConflict,
		"a payroll run already exists for an overlapping period",
		http.StatusConflict,
	)
	ErrUnknownEmployee = apperror.New(
		apperror.CodeConfiguration,
		"pre-run item references an employee missing from the directory",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidEmployeeReference = apperror.New(
		apperror.CodeConfiguration,
		"employee directory returned an invalid employee id",
		http.StatusUnprocessableEntity,
	)
)
