package payrolladjustment

import (
	"strings"

	payrolladjustmenterrors "go-payroll/internal/payrolladjustment/errors"
)

// Validate checks an adjustment request before any row is touched.
func Validate(t Type, field Field, amount int64, reason string) error {
	if !t.Valid() {
		return payrolladjustmenterrors.ErrInvalidType
	}
	if field != FieldFinalPaidSalary {
		return payrolladjustmenterrors.ErrUnsupportedField
	}
	if strings.TrimSpace(reason) == "" {
		return payrolladjustmenterrors.ErrReasonRequired
	}

	switch t {
	case TypeBonus, TypeDeduction:
		if amount <= 0 {
			return payrolladjustmenterrors.ErrAmountMustBePositive
		}
	case TypeCorrection, TypeRetroactive:
		if amount == 0 {
			return payrolladjustmenterrors.ErrAmountMustBeNonZero
		}
	case TypeManualOverride:
		if amount < 0 {
			return payrolladjustmenterrors.ErrOverrideNegative
		}
	}
	return nil
}

// SignedDelta is the change to final paid. A manual override carries the target value,
// so its delta depends on the line's value at application time.
func SignedDelta(t Type, amount, current int64) int64 {
	switch t {
	case TypeBonus:
		return amount
	case TypeDeduction:
		return -amount
	case TypeManualOverride:
		return amount - current
	default:
		return amount
	}
}
