package payrollrun

import (
	"time"

	"go-payroll/internal/payrollcalc"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PayrollRun struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PeriodStart time.Time `gorm:"type:date;not null"`
	PeriodEnd   time.Time `gorm:"type:date;not null"`
	Status      Status    `gorm:"type:varchar(40);not null;index"`
	LastEvent   *Event    `gorm:"type:varchar(40)"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`

	// DraftPreviousStatus is set while a draft is being generated so a failed or abandoned
	// generation can be rolled back.
	DraftPreviousStatus *Status `gorm:"type:varchar(40)"`

	PeriodApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	PeriodApprovedAt  *time.Time
	PublishedBy       *uuid.UUID `gorm:"type:uuid"`
	PublishedAt       *time.Time
	ManagerApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ManagerApprovedAt *time.Time
	FinanceApprovedBy *uuid.UUID `gorm:"type:uuid"`
	FinanceApprovedAt *time.Time

	RejectedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectedAt      *time.Time
	RejectionReason *string `gorm:"type:text"`
	RejectionStage  *Status `gorm:"type:varchar(40)"`

	FrozenBy              *uuid.UUID `gorm:"type:uuid"`
	FrozenAt              *time.Time
	FreezeReason          *string    `gorm:"type:text"`
	UnfrozenBy            *uuid.UUID `gorm:"type:uuid"`
	UnfrozenAt            *time.Time
	UnfreezeJustification *string    `gorm:"type:text"`
	PaidBy                *uuid.UUID `gorm:"type:uuid"`
	PaidAt                *time.Time

	TotalGross      int64 `gorm:"not null;default:0"`
	TotalDeductions int64 `gorm:"not null;default:0"`
	TotalPenalties  int64 `gorm:"not null;default:0"`
	TotalNet        int64 `gorm:"not null;default:0"`
	TotalFinalPaid  int64 `gorm:"not null;default:0"`
	EmployeeCount   int   `gorm:"not null;default:0"`
	ExceptionCount  int   `gorm:"not null;default:0"`

	DraftVersion int `gorm:"not null;default:0"`
	Version      int `gorm:"not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (PayrollRun) TableName() string {
	return "payroll_runs"
}

// IsRejected reports whether the run is back under review because of its latest rejection.
// An unfreeze after the rejection supersedes the marker.
func (r PayrollRun) IsRejected() bool {
	if r.Status != StatusUnderReview || r.RejectedAt == nil {
		return false
	}
	return r.UnfrozenAt == nil || r.RejectedAt.After(*r.UnfrozenAt)
}

type LineItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null"`
	RunID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_line_items_run_employee"`
	DraftVersion   int       `gorm:"not null"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_line_items_run_employee"`
	EmployeeName   string    `gorm:"type:varchar(150);not null"`
	DepartmentName string    `gorm:"type:varchar(150)"`
	PositionName   string    `gorm:"type:varchar(150)"`

	BaseSalary            int64                                      `gorm:"not null"`
	Allowances            datatypes.JSONSlice[payrollcalc.Allowance] `gorm:"type:jsonb;not null"`
	AllowanceTotal        int64                                      `gorm:"not null"`
	LeaveCompensation     int64                                      `gorm:"not null;default:0"`
	Overtime              int64                                      `gorm:"not null;default:0"`
	SigningBonus          int64                                      `gorm:"not null;default:0"`
	SigningBonusRef       *string                                    `gorm:"type:varchar(64)"`
	TerminationBenefit    int64                                      `gorm:"not null;default:0"`
	TerminationBenefitRef *string                                    `gorm:"type:varchar(64)"`
	Gross                 int64                                      `gorm:"not null"`
	Deductions            datatypes.JSONSlice[payrollcalc.Deduction] `gorm:"type:jsonb;not null"`
	DeductionTotal        int64                                      `gorm:"not null"`
	Penalties             datatypes.JSONSlice[payrollcalc.Penalty]   `gorm:"type:jsonb;not null"`
	PenaltyTotal          int64                                      `gorm:"not null"`
	Net                   int64                                      `gorm:"not null"`
	AdjustmentTotal       int64                                      `gorm:"not null;default:0"`
	FinalPaid             int64                                      `gorm:"not null"`

	BankName          string `gorm:"type:varchar(100)"`
	BankAccountNumber string `gorm:"type:varchar(50)"`
	BankAccountHolder string `gorm:"type:varchar(150)"`

	IsBankDetailsMissing bool    `gorm:"not null;default:false"`
	HasNegativeNetPay    bool    `gorm:"not null;default:false"`
	IsFlagged            bool    `gorm:"not null;default:false"`
	FlagReason           *string `gorm:"type:text"`

	Version   int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LineItem) TableName() string {
	return "payroll_line_items"
}

// Recompute derives final paid from net and the applied adjustments.
func (l *LineItem) Recompute() {
	l.FinalPaid = l.Net + l.AdjustmentTotal
	l.HasNegativeNetPay = l.Net < 0
}

// Transition is one applied event in a run's history.
type Transition struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null"`
	RunID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Event      Event     `gorm:"type:varchar(40);not null"`
	FromStatus Status    `gorm:"type:varchar(40);not null"`
	ToStatus   Status    `gorm:"type:varchar(40);not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	ActorRole  string    `gorm:"type:varchar(40)"`
	Reason     *string   `gorm:"type:text"`
	Rejection  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

func (Transition) TableName() string {
	return "payroll_run_transitions"
}

// Totals aggregates the current draft's line items.
type Totals struct {
	Gross         int64
	Deductions    int64
	Penalties     int64
	Net           int64
	FinalPaid     int64
	EmployeeCount int
}

func (t Totals) ApplyTo(r *PayrollRun) {
	r.TotalGross = t.Gross
	r.TotalDeductions = t.Deductions
	r.TotalPenalties = t.Penalties
	r.TotalNet = t.Net
	r.TotalFinalPaid = t.FinalPaid
	r.EmployeeCount = t.EmployeeCount
}

// SumLines totals the lines stamped with draftVersion.
func SumLines(lines []LineItem, draftVersion int) Totals {
	var t Totals
	for _, l := range lines {
		if l.DraftVersion != draftVersion {
			continue
		}
		t.Gross += l.Gross
		t.Deductions += l.DeductionTotal
		t.Penalties += l.PenaltyTotal
		t.Net += l.Net
		t.FinalPaid += l.FinalPaid
		t.EmployeeCount++
	}
	return t
}
