package payrollcalc

import "github.com/shopspring/decimal"

type ComponentKind string

const (
	KindAllowance         ComponentKind = "ALLOWANCE"
	KindOvertime          ComponentKind = "OVERTIME"
	KindLeaveCompensation ComponentKind = "LEAVE_COMPENSATION"
)

type RuleCategory string

const (
	CategoryTax       RuleCategory = "TAX"
	CategoryInsurance RuleCategory = "INSURANCE"
)

type PenaltyKind string

const (
	PenaltyAbsence     PenaltyKind = "ABSENCE"
	PenaltyLateness    PenaltyKind = "LATENESS"
	PenaltyUnpaidLeave PenaltyKind = "UNPAID_LEAVE"
)

// Allowance is one earning on top of base salary. Amounts are minor currency units.
type Allowance struct {
	Name   string        `json:"name"`
	Kind   ComponentKind `json:"kind"`
	Amount int64         `json:"amount"`
}

type Attendance struct {
	AbsenceDays     int `json:"absence_days"`
	LatenessCount   int `json:"lateness_count"`
	UnpaidLeaveDays int `json:"unpaid_leave_days"`
}

// ApprovedItem is a signing bonus or termination benefit cleared by its own approval chain.
type ApprovedItem struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

type Inputs struct {
	EmployeeID         string
	BaseSalary         int64
	Allowances         []Allowance
	Attendance         Attendance
	SigningBonus       *ApprovedItem
	TerminationBenefit *ApprovedItem
}

// StatutoryRule is a configured tax rule or insurance bracket. Percentage is applied on gross
// (e.g. 1.5 means 1.5%); when it is zero FlatAmount is charged instead. MaxGross zero means unbounded.
type StatutoryRule struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	FlatAmount int64           `json:"flat_amount"`
	MinGross   int64           `json:"min_gross"`
	MaxGross   int64           `json:"max_gross"`
}

// PenaltyRates: absence and unpaid leave are fractions of the daily rate per day,
// lateness is a flat amount per occurrence.
type PenaltyRates struct {
	AbsenceDayFactor     decimal.Decimal `json:"absence_day_factor"`
	LatenessFlat         int64           `json:"lateness_flat"`
	UnpaidLeaveDayFactor decimal.Decimal `json:"unpaid_leave_day_factor"`
}

type RateConfig struct {
	ID                string
	WorkingDays       int
	TaxRules          []StatutoryRule
	InsuranceBrackets []StatutoryRule
	Penalties         PenaltyRates
}

type Deduction struct {
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Category RuleCategory `json:"category"`
	Amount   int64        `json:"amount"`
}

type Penalty struct {
	Kind     PenaltyKind `json:"kind"`
	Quantity int         `json:"quantity"`
	Amount   int64       `json:"amount"`
}

// Line is the computed pay of one employee for one period.
type Line struct {
	EmployeeID            string
	BaseSalary            int64
	Allowances            []Allowance
	AllowanceTotal        int64
	SigningBonus          int64
	SigningBonusRef       string
	TerminationBenefit    int64
	TerminationBenefitRef string
	Gross                 int64
	Deductions            []Deduction
	DeductionTotal        int64
	Penalties             []Penalty
	PenaltyTotal          int64
	Net                   int64
}

// AllowanceTotalOf sums allowances of one kind.
func (l Line) AllowanceTotalOf(kind ComponentKind) int64 {
	var total int64
	for _, a := range l.Allowances {
		if a.Kind == kind {
			total += a.Amount
		}
	}
	return total
}
