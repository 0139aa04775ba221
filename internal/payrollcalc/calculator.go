package payrollcalc

import (
	payrollcalcerrors "go-payroll/internal/payrollcalc/errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeLine derives gross, statutory deductions, attendance penalties and net pay.
// It is pure: the same inputs always give the same line. Negative net pay is returned
// as is; flagging it belongs to exception detection.
func ComputeLine(in Inputs, rates RateConfig) (Line, error) {
	if err := validate(in, rates); err != nil {
		return Line{}, err
	}

	line := Line{
		EmployeeID: in.EmployeeID,
		BaseSalary: in.BaseSalary,
		Allowances: append([]Allowance(nil), in.Allowances...),
	}

	for _, a := range in.Allowances {
		line.AllowanceTotal += a.Amount
	}
	if in.SigningBonus != nil {
		line.SigningBonus = in.SigningBonus.Amount
		line.SigningBonusRef = in.SigningBonus.ID
	}
	if in.TerminationBenefit != nil {
		line.TerminationBenefit = in.TerminationBenefit.Amount
		line.TerminationBenefitRef = in.TerminationBenefit.ID
	}
	line.Gross = line.BaseSalary + line.AllowanceTotal + line.SigningBonus + line.TerminationBenefit

	line.Deductions = make([]Deduction, 0, len(rates.TaxRules)+len(rates.InsuranceBrackets))
	for _, group := range []struct {
		category RuleCategory
		rules    []StatutoryRule
	}{
		{CategoryTax, rates.TaxRules},
		{CategoryInsurance, rates.InsuranceBrackets},
	} {
		for _, rule := range group.rules {
			if !rule.appliesTo(line.Gross) {
				continue
			}
			d := Deduction{
				Code:     rule.Code,
				Name:     rule.Name,
				Category: group.category,
				Amount:   rule.charge(line.Gross),
			}
			line.Deductions = append(line.Deductions, d)
			line.DeductionTotal += d.Amount
		}
	}

	line.Penalties = penalties(in.BaseSalary, in.Attendance, rates)
	for _, p := range line.Penalties {
		line.PenaltyTotal += p.Amount
	}

	line.Net = line.Gross - line.DeductionTotal - line.PenaltyTotal
	return line, nil
}

func penalties(base int64, att Attendance, rates RateConfig) []Penalty {
	out := make([]Penalty, 0, 3)
	workingDays := decimal.NewFromInt(int64(rates.WorkingDays))
	daily := decimal.NewFromInt(base).Div(workingDays)

	if att.AbsenceDays > 0 {
		amount := daily.Mul(rates.Penalties.AbsenceDayFactor).Mul(decimal.NewFromInt(int64(att.AbsenceDays)))
		out = append(out, Penalty{Kind: PenaltyAbsence, Quantity: att.AbsenceDays, Amount: roundMinor(amount)})
	}
	if att.LatenessCount > 0 {
		out = append(out, Penalty{
			Kind:     PenaltyLateness,
			Quantity: att.LatenessCount,
			Amount:   rates.Penalties.LatenessFlat * int64(att.LatenessCount),
		})
	}
	if att.UnpaidLeaveDays > 0 {
		amount := daily.Mul(rates.Penalties.UnpaidLeaveDayFactor).Mul(decimal.NewFromInt(int64(att.UnpaidLeaveDays)))
		out = append(out, Penalty{Kind: PenaltyUnpaidLeave, Quantity: att.UnpaidLeaveDays, Amount: roundMinor(amount)})
	}
	return out
}

func (r StatutoryRule) appliesTo(gross int64) bool {
	if gross < r.MinGross {
		return false
	}
	return r.MaxGross == 0 || gross <= r.MaxGross
}

func (r StatutoryRule) charge(gross int64) int64 {
	if r.Percentage.IsZero() {
		return r.FlatAmount
	}
	return ApplyPercentage(gross, r.Percentage)
}

// ApplyPercentage returns amount × pct / 100 rounded half-up to the minor unit.
func ApplyPercentage(amount int64, pct decimal.Decimal) int64 {
	return roundMinor(decimal.NewFromInt(amount).Mul(pct).Div(hundred))
}

// decimal.Round rounds half away from zero, i.e. half-up for the non negative amounts used here.
func roundMinor(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

func validate(in Inputs, rates RateConfig) error {
	if in.BaseSalary < 0 {
		return payrollcalcerrors.ErrNegativeAmount
	}
	for _, a := range in.Allowances {
		if a.Amount < 0 {
			return payrollcalcerrors.ErrNegativeAmount
		}
	}
	for _, item := range []*ApprovedItem{in.SigningBonus, in.TerminationBenefit} {
		if item != nil && item.Amount < 0 {
			return payrollcalcerrors.ErrNegativeAmount
		}
	}
	att := in.Attendance
	if att.AbsenceDays < 0 || att.LatenessCount < 0 || att.UnpaidLeaveDays < 0 {
		return payrollcalcerrors.ErrInvalidAttendance
	}

	if err := ValidateRates(rates); err != nil {
		return err
	}

	p := rates.Penalties
	if att.AbsenceDays > 0 && p.AbsenceDayFactor.IsZero() {
		return payrollcalcerrors.ErrMissingPenaltyRate
	}
	if att.UnpaidLeaveDays > 0 && p.UnpaidLeaveDayFactor.IsZero() {
		return payrollcalcerrors.ErrMissingPenaltyRate
	}
	return nil
}

// ValidateRates checks a rate config on its own, before any employee is computed.
func ValidateRates(rates RateConfig) error {
	if rates.WorkingDays <= 0 {
		return payrollcalcerrors.ErrInvalidWorkingDays
	}
	if len(rates.TaxRules) == 0 {
		return payrollcalcerrors.ErrMissingTaxRule
	}
	for _, group := range [][]StatutoryRule{rates.TaxRules, rates.InsuranceBrackets} {
		for _, rule := range group {
			if rule.Percentage.IsNegative() || rule.FlatAmount < 0 {
				return payrollcalcerrors.ErrMalformedRate
			}
			if rule.Percentage.IsZero() && rule.FlatAmount == 0 {
				return payrollcalcerrors.ErrMalformedRate
			}
		}
	}
	p := rates.Penalties
	if p.AbsenceDayFactor.IsNegative() || p.UnpaidLeaveDayFactor.IsNegative() || p.LatenessFlat < 0 {
		return payrollcalcerrors.ErrMalformedRate
	}
	return nil
}
