package payrollcalcerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrNegativeAmount = apperror.New(
		apperror.CodeInvalidInput,
		"salary components cannot be negative",
		http.StatusBadRequest,
	)
	ErrInvalidAttendance = apperror.New(
		apperror.CodeInvalidInput,
		"attendance counts cannot be negative",
		http.StatusBadRequest,
	)
	ErrInvalidWorkingDays = apperror.New(
		apperror.CodeInvalidInput,
		"rate config working days must be positive",
		http.StatusBadRequest,
	)
	ErrMissingTaxRule = apperror.New(
		apperror.CodeInvalidInput,
		"rate config has no tax rule",
		http.StatusBadRequest,
	)
	ErrMalformedRate = apperror.New(
		apperror.CodeInvalidInput,
		"rate entry needs either a percentage or a flat amount",
		http.StatusBadRequest,
	)
	ErrMissingPenaltyRate = apperror.New(
		apperror.CodeInvalidInput,
		"penalty rate missing for recorded attendance",
		http.StatusBadRequest,
	)
)
