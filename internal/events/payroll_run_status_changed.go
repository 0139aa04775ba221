package events

import "time"

const PayrollRunStatusChangedTopic = "hr.payroll.run.status_changed.v1"

type PayrollRunStatusChangedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	RunID      string    `json:"run_id"`
	CompanyID  string    `json:"company_id"`
	Event      string    `json:"event"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Rejected   bool      `json:"rejected"`
	OccurredAt time.Time `json:"occurred_at"`
}
