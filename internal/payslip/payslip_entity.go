package payslip

import (
	"time"

	"go-payroll/internal/payrollcalc"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusGenerated  Status = "GENERATED"
	StatusSent       Status = "SENT"
	StatusViewed     Status = "VIEWED"
	StatusDownloaded Status = "DOWNLOADED"
)

func (s Status) rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusViewed:
		return 2
	case StatusDownloaded:
		return 3
	}
	return 0
}

// Advance never moves a payslip backwards. Viewing after a download keeps DOWNLOADED.
func (s Status) Advance(to Status) Status {
	if to.rank() > s.rank() {
		return to
	}
	return s
}

// Payslip is a frozen copy of a line item. Amounts never change after insert.
type Payslip struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PayslipNumber string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	RunID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payslips_run_employee"`
	LineItemID    uuid.UUID `gorm:"type:uuid;not null"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payslips_run_employee;index"`
	EmployeeName  string    `gorm:"type:varchar(150);not null"`
	PeriodStart   time.Time `gorm:"type:date;not null"`
	PeriodEnd     time.Time `gorm:"type:date;not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`

	BaseSalary         int64                                      `gorm:"not null"`
	Allowances         datatypes.JSONSlice[payrollcalc.Allowance] `gorm:"type:jsonb;not null"`
	SigningBonus       int64                                      `gorm:"not null;default:0"`
	TerminationBenefit int64                                      `gorm:"not null;default:0"`
	LeaveCompensation  int64                                      `gorm:"not null;default:0"`
	Overtime           int64                                      `gorm:"not null;default:0"`
	Deductions         datatypes.JSONSlice[payrollcalc.Deduction] `gorm:"type:jsonb;not null"`
	Penalties          datatypes.JSONSlice[payrollcalc.Penalty]   `gorm:"type:jsonb;not null"`
	Gross              int64                                      `gorm:"not null"`
	DeductionTotal     int64                                      `gorm:"not null"`
	PenaltyTotal       int64                                      `gorm:"not null"`
	Net                int64                                      `gorm:"not null"`
	AdjustmentTotal    int64                                      `gorm:"not null;default:0"`
	FinalPaid          int64                                      `gorm:"not null"`

	BankName          string `gorm:"type:varchar(100)"`
	BankAccountNumber string `gorm:"type:varchar(50)"`
	BankAccountHolder string `gorm:"type:varchar(150)"`

	Status       Status     `gorm:"type:varchar(20);not null;index"`
	GeneratedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	GeneratedAt  time.Time  `gorm:"not null"`
	SentBy       *uuid.UUID `gorm:"type:uuid"`
	SentAt       *time.Time
	ViewedAt     *time.Time
	DownloadedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Payslip) TableName() string {
	return "payslips"
}

// Sent reports whether distribution has started, which viewing and downloading require.
func (p Payslip) Sent() bool {
	return p.SentAt != nil
}
