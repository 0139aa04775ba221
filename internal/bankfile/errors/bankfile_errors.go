package bankfileerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidFormat = apperror.New(
		apperror.CodeValidation,
		"format must be one of csv, fixed, xml, json",
		http.StatusBadRequest,
	)
	ErrBankRequired = apperror.New(
		apperror.CodeValidation,
		"bank is required",
		http.StatusBadRequest,
	)
	ErrRunNotReady = apperror.New(
		apperror.CodeNotReady,
		"bank files can only be exported for a frozen or paid run",
		http.StatusConflict,
	)
	ErrNoPayslips = apperror.New(
		apperror.CodeNoPayslips,
		"run has no payslips to export",
		http.StatusConflict,
	)
	ErrNegativeAmount = apperror.New(
		apperror.CodeValidation,
		"transfer amount must not be negative",
		http.StatusUnprocessableEntity,
	)
	ErrFieldTooLong = apperror.New(
		apperror.CodeValidation,
		"transfer field exceeds the bank file layout",
		http.StatusUnprocessableEntity,
	)
	ErrTotalTooLarge = apperror.New(
		apperror.CodeValidation,
		"run total exceeds the bank file layout",
		http.StatusUnprocessableEntity,
	)
)
