package payrollrun

import "go-payroll/internal/payrollcalc"

type CreatePayrollRunRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

type EditPeriodRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

type TransitionRequest struct {
	Event  string `json:"event" binding:"required"`
	Reason string `json:"reason"`
}

type ListPayrollRunsQuery struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type PayrollRunResponse struct {
	ID                    string  `json:"id"`
	CompanyID             string  `json:"company_id"`
	PeriodStart           string  `json:"period_start"`
	PeriodEnd             string  `json:"period_end"`
	Status                string  `json:"status"`
	LastEvent             *string `json:"last_event,omitempty"`
	Rejected              bool    `json:"rejected"`
	RejectedBy            *string `json:"rejected_by,omitempty"`
	RejectedAt            *string `json:"rejected_at,omitempty"`
	RejectionReason       *string `json:"rejection_reason,omitempty"`
	RejectionStage        *string `json:"rejection_stage,omitempty"`
	PeriodApprovedBy      *string `json:"period_approved_by,omitempty"`
	ManagerApprovedBy     *string `json:"manager_approved_by,omitempty"`
	FinanceApprovedBy     *string `json:"finance_approved_by,omitempty"`
	FinanceApprovedAt     *string `json:"finance_approved_at,omitempty"`
	FrozenBy              *string `json:"frozen_by,omitempty"`
	FrozenAt              *string `json:"frozen_at,omitempty"`
	FreezeReason          *string `json:"freeze_reason,omitempty"`
	UnfrozenBy            *string `json:"unfrozen_by,omitempty"`
	UnfrozenAt            *string `json:"unfrozen_at,omitempty"`
	UnfreezeJustification *string `json:"unfreeze_justification,omitempty"`
	PaidAt                *string `json:"paid_at,omitempty"`
	TotalGross            int64   `json:"total_gross"`
	TotalDeductions       int64   `json:"total_deductions"`
	TotalPenalties        int64   `json:"total_penalties"`
	TotalNet              int64   `json:"total_net"`
	TotalFinalPaid        int64   `json:"total_final_paid"`
	EmployeeCount         int     `json:"employee_count"`
	ExceptionCount        int     `json:"exception_count"`
	DraftVersion          int     `json:"draft_version"`
	Version               int     `json:"version"`
	CreatedBy             string  `json:"created_by"`
	CreatedAt             string  `json:"created_at"`
}

type TransitionResponse struct {
	Run            PayrollRunResponse `json:"run"`
	AlreadyApplied bool               `json:"already_applied"`
}

type LineItemResponse struct {
	ID                    string                  `json:"id"`
	RunID                 string                  `json:"run_id"`
	DraftVersion          int                     `json:"draft_version"`
	EmployeeID            string                  `json:"employee_id"`
	EmployeeName          string                  `json:"employee_name"`
	DepartmentName        string                  `json:"department_name,omitempty"`
	PositionName          string                  `json:"position_name,omitempty"`
	BaseSalary            int64                   `json:"base_salary"`
	Allowances            []payrollcalc.Allowance `json:"allowances"`
	AllowanceTotal        int64                   `json:"allowance_total"`
	SigningBonus          int64                   `json:"signing_bonus"`
	SigningBonusRef       *string                 `json:"signing_bonus_ref,omitempty"`
	TerminationBenefit    int64                   `json:"termination_benefit"`
	TerminationBenefitRef *string                 `json:"termination_benefit_ref,omitempty"`
	Gross                 int64                   `json:"gross"`
	Deductions            []payrollcalc.Deduction `json:"deductions"`
	DeductionTotal        int64                   `json:"deduction_total"`
	Penalties             []payrollcalc.Penalty   `json:"penalties"`
	PenaltyTotal          int64                   `json:"penalty_total"`
	Net                   int64                   `json:"net"`
	AdjustmentTotal       int64                   `json:"adjustment_total"`
	FinalPaid             int64                   `json:"final_paid"`
	BankName              string                  `json:"bank_name,omitempty"`
	BankAccountNumber     string                  `json:"bank_account_number,omitempty"`
	IsBankDetailsMissing  bool                    `json:"is_bank_details_missing"`
	HasNegativeNetPay     bool                    `json:"has_negative_net_pay"`
	IsFlagged             bool                    `json:"is_flagged"`
	FlagReason            *string                 `json:"flag_reason,omitempty"`
	Version               int                     `json:"version"`
}

type TransitionHistoryResponse struct {
	ID         string  `json:"id"`
	Event      string  `json:"event"`
	FromStatus string  `json:"from_status"`
	ToStatus   string  `json:"to_status"`
	ActorID    string  `json:"actor_id"`
	ActorRole  string  `json:"actor_role,omitempty"`
	Reason     *string `json:"reason,omitempty"`
	Rejection  bool    `json:"rejection"`
	CreatedAt  string  `json:"created_at"`
}

type DraftResponse struct {
	Run            PayrollRunResponse `json:"run"`
	LineCount      int                `json:"line_count"`
	FlaggedCount   int                `json:"flagged_count"`
	ExceptionsOpen int                `json:"exceptions_open"`
}
