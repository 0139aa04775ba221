package payrollsource

import (
	"strings"
	"time"

	"go-payroll/internal/payrollcalc"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Period struct {
	Start time.Time
	End   time.Time
}

type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
}

// Complete reports whether a transfer can be routed with these details.
func (b BankDetails) Complete() bool {
	return strings.TrimSpace(b.BankName) != "" && strings.TrimSpace(b.AccountNumber) != ""
}

// Employee is the read-only snapshot taken at draft generation.
type Employee struct {
	ID             string
	Name           string
	DepartmentName string
	PositionName   string
	BaseSalary     int64
	Allowances     []payrollcalc.Allowance
	Bank           BankDetails
}

const (
	PreRunSigningBonus       = "SIGNING_BONUS"
	PreRunTerminationBenefit = "TERMINATION_BENEFIT"

	PreRunStatusPending  = "PENDING"
	PreRunStatusApproved = "APPROVED"
	PreRunStatusRejected = "REJECTED"
)

// PreRunItem is a one-off payment cleared through its own approval chain before a run.
type PreRunItem struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind          string     `gorm:"type:varchar(30);not null"`
	Amount        int64      `gorm:"type:bigint;not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	EffectiveDate time.Time  `gorm:"type:date;not null"`
	ApprovedBy    *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PreRunItem) TableName() string {
	return "payroll_pre_run_items"
}

func (p PreRunItem) Pending() bool {
	return p.Status == PreRunStatusPending
}

// RateConfigRecord is an approved, versioned snapshot of statutory rates.
type RateConfigRecord struct {
	ID                   uuid.UUID                                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID            uuid.UUID                                      `gorm:"type:uuid;not null;index"`
	Version              int                                            `gorm:"not null"`
	Status               string                                         `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	EffectiveFrom        time.Time                                      `gorm:"type:date;not null"`
	WorkingDays          int                                            `gorm:"not null"`
	TaxRules             datatypes.JSONSlice[payrollcalc.StatutoryRule] `gorm:"type:jsonb;not null"`
	InsuranceBrackets    datatypes.JSONSlice[payrollcalc.StatutoryRule] `gorm:"type:jsonb;not null"`
	AbsenceDayFactor     decimal.Decimal                                `gorm:"type:numeric(8,4);not null;default:0"`
	LatenessFlat         int64                                          `gorm:"type:bigint;not null;default:0"`
	UnpaidLeaveDayFactor decimal.Decimal                                `gorm:"type:numeric(8,4);not null;default:0"`
	ApprovedAt           *time.Time
	CreatedAt            time.Time
}

func (RateConfigRecord) TableName() string {
	return "payroll_rate_configs"
}

const RateConfigStatusApproved = "APPROVED"

func (r RateConfigRecord) ToRateConfig() payrollcalc.RateConfig {
	return payrollcalc.RateConfig{
		ID:                r.ID.String(),
		WorkingDays:       r.WorkingDays,
		TaxRules:          []payrollcalc.StatutoryRule(r.TaxRules),
		InsuranceBrackets: []payrollcalc.StatutoryRule(r.InsuranceBrackets),
		Penalties: payrollcalc.PenaltyRates{
			AbsenceDayFactor:     r.AbsenceDayFactor,
			LatenessFlat:         r.LatenessFlat,
			UnpaidLeaveDayFactor: r.UnpaidLeaveDayFactor,
		},
	}
}

// employeeRow is the joined projection of employees, org units and the effective salary.
type employeeRow struct {
	ID                string
	FullName          string
	DepartmentName    string
	PositionName      string
	BankName          string
	BankAccountNumber string
	BankAccountHolder string
	BaseSalary        int64
}

type payComponentRow struct {
	EmployeeID string
	Name       string
	Kind       string
	Amount     int64
}

type attendanceRow struct {
	EmployeeID      string
	AbsenceDays     int
	LatenessCount   int
	UnpaidLeaveDays int
}

type previousNetRow struct {
	EmployeeID string
	NetSalary  int64
}
