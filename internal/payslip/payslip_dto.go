package payslip

import "go-payroll/internal/payrollcalc"

type SendPayslipsRequest struct {
	// PayslipIDs narrows distribution; empty sends every generated payslip of the run.
	PayslipIDs []string `json:"payslip_ids" binding:"omitempty,dive,uuid"`
}

type PayslipResponse struct {
	ID                 string                  `json:"id"`
	PayslipNumber      string                  `json:"payslip_number"`
	RunID              string                  `json:"run_id"`
	LineItemID         string                  `json:"line_item_id"`
	EmployeeID         string                  `json:"employee_id"`
	EmployeeName       string                  `json:"employee_name"`
	PeriodStart        string                  `json:"period_start"`
	PeriodEnd          string                  `json:"period_end"`
	Currency           string                  `json:"currency"`
	BaseSalary         int64                   `json:"base_salary"`
	Allowances         []payrollcalc.Allowance `json:"allowances"`
	SigningBonus       int64                   `json:"signing_bonus"`
	TerminationBenefit int64                   `json:"termination_benefit"`
	LeaveCompensation  int64                   `json:"leave_compensation"`
	Overtime           int64                   `json:"overtime"`
	Deductions         []payrollcalc.Deduction `json:"deductions"`
	Penalties          []payrollcalc.Penalty   `json:"penalties"`
	Gross              int64                   `json:"gross"`
	DeductionTotal     int64                   `json:"deduction_total"`
	PenaltyTotal       int64                   `json:"penalty_total"`
	Net                int64                   `json:"net"`
	AdjustmentTotal    int64                   `json:"adjustment_total"`
	FinalPaid          int64                   `json:"final_paid"`
	Status             string                  `json:"status"`
	GeneratedAt        string                  `json:"generated_at"`
	SentAt             *string                 `json:"sent_at,omitempty"`
	ViewedAt           *string                 `json:"viewed_at,omitempty"`
	DownloadedAt       *string                 `json:"downloaded_at,omitempty"`
}

type SkippedLineResponse struct {
	LineItemID string `json:"line_item_id"`
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type GenerateResponse struct {
	RunID     string                `json:"run_id"`
	Generated []PayslipResponse     `json:"generated"`
	Existing  []PayslipResponse     `json:"existing"`
	Skipped   []SkippedLineResponse `json:"skipped"`
}

// Document is a rendered payslip ready to stream.
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}
