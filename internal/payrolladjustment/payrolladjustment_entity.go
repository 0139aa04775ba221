package payrolladjustment

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeCorrection     Type = "CORRECTION"
	TypeBonus          Type = "BONUS"
	TypeDeduction      Type = "DEDUCTION"
	TypeRetroactive    Type = "RETROACTIVE"
	TypeManualOverride Type = "MANUAL_OVERRIDE"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCorrection, TypeBonus, TypeDeduction, TypeRetroactive, TypeManualOverride:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Field is the closed set of line item values an adjustment may change.
type Field string

const FieldFinalPaidSalary Field = "final_paid_salary"

// Adjustment is an append-only ledger entry against one line item. OldValue and NewValue
// are the projection at creation and are re-stamped when the entry is applied.
type Adjustment struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	RunID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	LineItemID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID      uuid.UUID  `gorm:"type:uuid;not null"`
	Type            Type       `gorm:"type:varchar(30);not null"`
	Field           Field      `gorm:"type:varchar(40);not null"`
	Amount          int64      `gorm:"not null"`
	Delta           int64      `gorm:"not null"`
	OldValue        int64      `gorm:"not null"`
	NewValue        int64      `gorm:"not null"`
	Reason          string     `gorm:"type:text;not null"`
	Status          Status     `gorm:"type:varchar(20);not null;index"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectedAt      *time.Time
	RejectionReason *string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Adjustment) TableName() string {
	return "payroll_adjustments"
}
