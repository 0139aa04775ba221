package payrollexception

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeMissingBankDetails Type = "MISSING_BANK_DETAILS"
	TypeNegativeNetPay     Type = "NEGATIVE_NET_PAY"
	TypeZeroBaseSalary     Type = "ZERO_BASE_SALARY"
	TypeExcessivePenalties Type = "EXCESSIVE_PENALTIES"
	TypeSalarySpike        Type = "SALARY_SPIKE"
	TypeCalculationError   Type = "CALCULATION_ERROR"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityOrder = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func (s Severity) Rank() int {
	for i, v := range severityOrder {
		if v == s {
			return i
		}
	}
	return -1
}

func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// AtLeast lists s and every severity above it.
func (s Severity) AtLeast() []Severity {
	r := s.Rank()
	if r < 0 {
		return nil
	}
	return append([]Severity(nil), severityOrder[r:]...)
}

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusIgnored    Status = "IGNORED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusIgnored:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusIgnored
}

var unresolvedStatuses = []Status{StatusOpen, StatusInProgress}

type Exception struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	RunID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_payroll_exceptions_run_status"`
	DraftVersion    int        `gorm:"not null"`
	LineItemID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID      uuid.UUID  `gorm:"type:uuid;not null"`
	Type            Type       `gorm:"type:varchar(40);not null"`
	Severity        Severity   `gorm:"type:varchar(20);not null"`
	Description     string     `gorm:"type:text;not null"`
	Status          Status     `gorm:"type:varchar(20);not null;default:'OPEN';index:idx_payroll_exceptions_run_status"`
	ResolvedBy      *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt      *time.Time
	ResolutionNotes *string `gorm:"type:text"`
	AutoResolved    bool    `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Exception) TableName() string {
	return "payroll_exceptions"
}

func (e Exception) key() string {
	return e.LineItemID.String() + "/" + string(e.Type)
}
