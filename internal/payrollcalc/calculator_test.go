package payrollcalc_test

import (
	"math/rand"
	"testing"

	"go-payroll/internal/payrollcalc"
	payrollcalcerrors "go-payroll/internal/payrollcalc/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardRates() payrollcalc.RateConfig {
	return payrollcalc.RateConfig{
		ID:          "rates-2026",
		WorkingDays: 20,
		TaxRules: []payrollcalc.StatutoryRule{
			{Code: "PIT", Name: "Income tax", Percentage: decimal.NewFromInt(10)},
		},
		InsuranceBrackets: []payrollcalc.StatutoryRule{
			{Code: "HEALTH", Name: "Health insurance", Percentage: decimal.NewFromInt(5)},
		},
		Penalties: payrollcalc.PenaltyRates{
			AbsenceDayFactor:     decimal.NewFromInt(1),
			LatenessFlat:         25,
			UnpaidLeaveDayFactor: decimal.NewFromInt(1),
		},
	}
}

func TestComputeLine_ReferenceEmployee(t *testing.T) {
	in := payrollcalc.Inputs{
		EmployeeID: "emp-1",
		BaseSalary: 5000,
		Allowances: []payrollcalc.Allowance{
			{Name: "Transport", Kind: payrollcalc.KindAllowance, Amount: 500},
			{Name: "Meal", Kind: payrollcalc.KindAllowance, Amount: 300},
		},
		SigningBonus: &payrollcalc.ApprovedItem{ID: "bonus-1", Amount: 200},
	}

	line, err := payrollcalc.ComputeLine(in, standardRates())
	require.NoError(t, err)

	assert.Equal(t, int64(6000), line.Gross)
	assert.Equal(t, int64(800), line.AllowanceTotal)
	assert.Equal(t, "bonus-1", line.SigningBonusRef)
	require.Len(t, line.Deductions, 2)
	assert.Equal(t, int64(600), line.Deductions[0].Amount)
	assert.Equal(t, payrollcalc.CategoryTax, line.Deductions[0].Category)
	assert.Equal(t, int64(300), line.Deductions[1].Amount)
	assert.Equal(t, int64(900), line.DeductionTotal)
	assert.Equal(t, int64(0), line.PenaltyTotal)
	assert.Equal(t, int64(5100), line.Net)
}

func TestComputeLine_Penalties(t *testing.T) {
	in := payrollcalc.Inputs{
		EmployeeID: "emp-2",
		BaseSalary: 3000,
		Attendance: payrollcalc.Attendance{AbsenceDays: 2, LatenessCount: 3, UnpaidLeaveDays: 1},
	}
	rates := standardRates()
	rates.Penalties.AbsenceDayFactor = decimal.RequireFromString("0.5")

	line, err := payrollcalc.ComputeLine(in, rates)
	require.NoError(t, err)

	// daily rate 150: absence 2 x 150 x 0.5, lateness 3 x 25, unpaid 1 x 150
	require.Len(t, line.Penalties, 3)
	assert.Equal(t, int64(150), line.Penalties[0].Amount)
	assert.Equal(t, int64(75), line.Penalties[1].Amount)
	assert.Equal(t, int64(150), line.Penalties[2].Amount)
	assert.Equal(t, int64(375), line.PenaltyTotal)
	assert.Equal(t, line.Gross-line.DeductionTotal-line.PenaltyTotal, line.Net)
}

func TestComputeLine_RoundsHalfUp(t *testing.T) {
	rates := standardRates()
	rates.TaxRules[0].Percentage = decimal.RequireFromString("2.5")
	rates.InsuranceBrackets = nil

	// 2.5% of 1010 = 25.25 -> 25, of 1020 = 25.5 -> 26
	line, err := payrollcalc.ComputeLine(payrollcalc.Inputs{EmployeeID: "e", BaseSalary: 1010}, rates)
	require.NoError(t, err)
	assert.Equal(t, int64(25), line.DeductionTotal)

	line, err = payrollcalc.ComputeLine(payrollcalc.Inputs{EmployeeID: "e", BaseSalary: 1020}, rates)
	require.NoError(t, err)
	assert.Equal(t, int64(26), line.DeductionTotal)
}

func TestComputeLine_BracketApplicability(t *testing.T) {
	rates := standardRates()
	rates.InsuranceBrackets = []payrollcalc.StatutoryRule{
		{Code: "LOW", Name: "Low bracket", FlatAmount: 40, MaxGross: 4000},
		{Code: "HIGH", Name: "High bracket", Percentage: decimal.NewFromInt(2), MinGross: 4001},
	}

	low, err := payrollcalc.ComputeLine(payrollcalc.Inputs{EmployeeID: "a", BaseSalary: 4000}, rates)
	require.NoError(t, err)
	require.Len(t, low.Deductions, 2)
	assert.Equal(t, "LOW", low.Deductions[1].Code)
	assert.Equal(t, int64(40), low.Deductions[1].Amount)

	high, err := payrollcalc.ComputeLine(payrollcalc.Inputs{EmployeeID: "b", BaseSalary: 5000}, rates)
	require.NoError(t, err)
	require.Len(t, high.Deductions, 2)
	assert.Equal(t, "HIGH", high.Deductions[1].Code)
	assert.Equal(t, int64(100), high.Deductions[1].Amount)
}

func TestComputeLine_NegativeNetIsNotAnError(t *testing.T) {
	in := payrollcalc.Inputs{
		EmployeeID: "emp-3",
		BaseSalary: 100,
		Attendance: payrollcalc.Attendance{LatenessCount: 10},
	}
	line, err := payrollcalc.ComputeLine(in, standardRates())
	require.NoError(t, err)
	assert.Less(t, line.Net, int64(0))
}

func TestComputeLine_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		in      payrollcalc.Inputs
		rates   func() payrollcalc.RateConfig
		wantErr error
	}{
		{
			name:    "negative base salary",
			in:      payrollcalc.Inputs{BaseSalary: -1},
			rates:   standardRates,
			wantErr: payrollcalcerrors.ErrNegativeAmount,
		},
		{
			name: "negative allowance",
			in: payrollcalc.Inputs{BaseSalary: 10, Allowances: []payrollcalc.Allowance{
				{Name: "x", Kind: payrollcalc.KindAllowance, Amount: -5},
			}},
			rates:   standardRates,
			wantErr: payrollcalcerrors.ErrNegativeAmount,
		},
		{
			name:    "negative attendance",
			in:      payrollcalc.Inputs{BaseSalary: 10, Attendance: payrollcalc.Attendance{AbsenceDays: -1}},
			rates:   standardRates,
			wantErr: payrollcalcerrors.ErrInvalidAttendance,
		},
		{
			name: "missing tax rule",
			in:   payrollcalc.Inputs{BaseSalary: 10},
			rates: func() payrollcalc.RateConfig {
				r := standardRates()
				r.TaxRules = nil
				return r
			},
			wantErr: payrollcalcerrors.ErrMissingTaxRule,
		},
		{
			name: "rule without rate",
			in:   payrollcalc.Inputs{BaseSalary: 10},
			rates: func() payrollcalc.RateConfig {
				r := standardRates()
				r.InsuranceBrackets = []payrollcalc.StatutoryRule{{Code: "EMPTY"}}
				return r
			},
			wantErr: payrollcalcerrors.ErrMalformedRate,
		},
		{
			name: "zero working days",
			in:   payrollcalc.Inputs{BaseSalary: 10},
			rates: func() payrollcalc.RateConfig {
				r := standardRates()
				r.WorkingDays = 0
				return r
			},
			wantErr: payrollcalcerrors.ErrInvalidWorkingDays,
		},
		{
			name: "absence without absence rate",
			in:   payrollcalc.Inputs{BaseSalary: 10, Attendance: payrollcalc.Attendance{AbsenceDays: 1}},
			rates: func() payrollcalc.RateConfig {
				r := standardRates()
				r.Penalties.AbsenceDayFactor = decimal.Zero
				return r
			},
			wantErr: payrollcalcerrors.ErrMissingPenaltyRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := payrollcalc.ComputeLine(tt.in, tt.rates())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestComputeLine_ArithmeticInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(20260301))
	rates := standardRates()
	rates.TaxRules[0].Percentage = decimal.RequireFromString("7.25")
	rates.InsuranceBrackets = append(rates.InsuranceBrackets, payrollcalc.StatutoryRule{
		Code: "PENSION", Name: "Pension", FlatAmount: 120, MinGross: 2000,
	})

	for i := 0; i < 500; i++ {
		in := payrollcalc.Inputs{
			EmployeeID: "emp",
			BaseSalary: rng.Int63n(2_000_000),
			Attendance: payrollcalc.Attendance{
				AbsenceDays:     rng.Intn(5),
				LatenessCount:   rng.Intn(8),
				UnpaidLeaveDays: rng.Intn(3),
			},
		}
		for j := rng.Intn(4); j > 0; j-- {
			in.Allowances = append(in.Allowances, payrollcalc.Allowance{
				Name: "a", Kind: payrollcalc.KindAllowance, Amount: rng.Int63n(100_000),
			})
		}
		if rng.Intn(3) == 0 {
			in.SigningBonus = &payrollcalc.ApprovedItem{ID: "b", Amount: rng.Int63n(50_000)}
		}
		if rng.Intn(5) == 0 {
			in.TerminationBenefit = &payrollcalc.ApprovedItem{ID: "t", Amount: rng.Int63n(80_000)}
		}

		line, err := payrollcalc.ComputeLine(in, rates)
		require.NoError(t, err)

		var allowances, deductions, penalties int64
		for _, a := range line.Allowances {
			allowances += a.Amount
		}
		for _, d := range line.Deductions {
			deductions += d.Amount
		}
		for _, p := range line.Penalties {
			penalties += p.Amount
		}

		assert.Equal(t, line.BaseSalary+allowances+line.SigningBonus+line.TerminationBenefit, line.Gross)
		assert.Equal(t, deductions, line.DeductionTotal)
		assert.Equal(t, penalties, line.PenaltyTotal)
		assert.Equal(t, line.Gross-line.DeductionTotal-line.PenaltyTotal, line.Net)

		again, err := payrollcalc.ComputeLine(in, rates)
		require.NoError(t, err)
		assert.Equal(t, line, again)
	}
}

func TestLine_AllowanceTotalOf(t *testing.T) {
	line := payrollcalc.Line{Allowances: []payrollcalc.Allowance{
		{Kind: payrollcalc.KindAllowance, Amount: 10},
		{Kind: payrollcalc.KindOvertime, Amount: 20},
		{Kind: payrollcalc.KindOvertime, Amount: 5},
	}}
	assert.Equal(t, int64(25), line.AllowanceTotalOf(payrollcalc.KindOvertime))
	assert.Equal(t, int64(0), line.AllowanceTotalOf(payrollcalc.KindLeaveCompensation))
}
