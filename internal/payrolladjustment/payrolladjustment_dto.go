package payrolladjustment

type ApplyAdjustmentRequest struct {
	LineItemID string `json:"line_item_id" binding:"required"`
	Type       string `json:"type" binding:"required"`
	Field      string `json:"field"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason" binding:"required"`
	// ExpectedOldValue is the final paid value the caller saw; a mismatch is a concurrency conflict.
	ExpectedOldValue *int64 `json:"expected_old_value"`
}

type RejectAdjustmentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ListAdjustmentsQuery struct {
	LineItemID string `form:"line_item_id"`
}

type AdjustmentResponse struct {
	ID              string  `json:"id"`
	RunID           string  `json:"run_id"`
	LineItemID      string  `json:"line_item_id"`
	EmployeeID      string  `json:"employee_id"`
	Type            string  `json:"type"`
	Field           string  `json:"field"`
	Amount          int64   `json:"amount"`
	Delta           int64   `json:"delta"`
	OldValue        int64   `json:"old_value"`
	NewValue        int64   `json:"new_value"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	CreatedBy       string  `json:"created_by"`
	CreatedAt       string  `json:"created_at"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectedBy      *string `json:"rejected_by,omitempty"`
	RejectedAt      *string `json:"rejected_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}
