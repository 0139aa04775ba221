package events

import "time"

const PayrollPayslipDistributedTopic = "hr.payroll.payslip.distributed.v1"

type PayrollPayslipDistributedEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	PayslipID     string    `json:"payslip_id"`
	PayslipNumber string    `json:"payslip_number"`
	RunID         string    `json:"run_id"`
	CompanyID     string    `json:"company_id"`
	EmployeeID    string    `json:"employee_id"`
	SentBy        string    `json:"sent_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}
