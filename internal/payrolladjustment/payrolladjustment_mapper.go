package payrolladjustment

import (
	"time"

	"github.com/google/uuid"
)

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func mapToResponse(a Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:              a.ID.String(),
		RunID:           a.RunID.String(),
		LineItemID:      a.LineItemID.String(),
		EmployeeID:      a.EmployeeID.String(),
		Type:            string(a.Type),
		Field:           string(a.Field),
		Amount:          a.Amount,
		Delta:           a.Delta,
		OldValue:        a.OldValue,
		NewValue:        a.NewValue,
		Reason:          a.Reason,
		Status:          string(a.Status),
		CreatedBy:       a.CreatedBy.String(),
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
		ApprovedBy:      uuidString(a.ApprovedBy),
		ApprovedAt:      timeString(a.ApprovedAt),
		RejectedBy:      uuidString(a.RejectedBy),
		RejectedAt:      timeString(a.RejectedAt),
		RejectionReason: a.RejectionReason,
	}
}

func mapToListResponse(items []Adjustment) []AdjustmentResponse {
	out := make([]AdjustmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, mapToResponse(a))
	}
	return out
}
