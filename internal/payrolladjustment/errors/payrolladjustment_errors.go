package payrolladjustmenterrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidAdjustmentID = apperror.New(
		apperror.CodeValidation,
		"invalid adjustment id",
		http.StatusBadRequest,
	)
	ErrInvalidLineItemID = apperror.New(
		apperror.CodeValidation,
		"invalid line item id",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeValidation,
		"reason is required",
		http.StatusBadRequest,
	)
	ErrInvalidType = apperror.New(
		apperror.CodeValidation,
		"adjustment type must be one of CORRECTION, BONUS, DEDUCTION, RETROACTIVE, MANUAL_OVERRIDE",
		http.StatusBadRequest,
	)
	ErrUnsupportedField = apperror.New(
		apperror.CodeValidation,
		"field cannot be adjusted",
		http.StatusBadRequest,
	)
	ErrAmountMustBePositive = apperror.New(
		apperror.CodeValidation,
		"amount must be positive for bonus and deduction adjustments",
		http.StatusBadRequest,
	)
	ErrAmountMustBeNonZero = apperror.New(
		apperror.CodeValidation,
		"amount must not be zero",
		http.StatusBadRequest,
	)
	ErrOverrideNegative = apperror.New(
		apperror.CodeValidation,
		"manual override target must not be negative",
		http.StatusBadRequest,
	)
	ErrAdjustmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"adjustment not found",
		http.StatusNotFound,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"adjustment is no longer pending",
		http.StatusConflict,
	)
	ErrSelfApproval = apperror.New(
		apperror.CodeForbidden,
		"an adjustment cannot be approved by its creator",
		http.StatusForbidden,
	)
	ErrLineNotCurrent = apperror.New(
		apperror.CodeInvalidState,
		"line item does not belong to the run's current draft",
		http.StatusConflict,
	)
	ErrStaleValue = apperror.Wrap(
		apperror.ErrConcurrencyConflict,
		apperror.CodeConcurrencyConflict,
		"line item value changed since it was read",
		http.StatusConflict,
	)
)
