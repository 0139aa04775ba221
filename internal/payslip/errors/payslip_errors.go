package paysliperrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidPayslipID = apperror.New(
		apperror.CodeValidation,
		"invalid payslip id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeValidation,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrPayslipNotFound = apperror.New(
		apperror.CodeNotFound,
		"payslip not found",
		http.StatusNotFound,
	)
	ErrRunNotReady = apperror.New(
		apperror.CodeNotReady,
		"payslips can only be generated for a frozen or paid run",
		http.StatusConflict,
	)
	ErrNotSent = apperror.New(
		apperror.CodeInvalidState,
		"payslip has not been sent yet",
		http.StatusConflict,
	)
	ErrNumberTaken = apperror.New(
		apperror.CodeConflict,
		"payslip number already issued",
		http.StatusConflict,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"payslip belongs to another employee",
		http.StatusForbidden,
	)
)
