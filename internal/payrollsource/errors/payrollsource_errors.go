package payrollsourceerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrRateConfigNotFound = apperror.New(
		apperror.CodeConfiguration,
		"no approved rate configuration for the period",
		http.StatusUnprocessableEntity,
	)
	ErrNoPayableEmployees = apperror.New(
		apperror.CodeConfiguration,
		"no payable employees for the period",
		http.StatusUnprocessableEntity,
	)
)
