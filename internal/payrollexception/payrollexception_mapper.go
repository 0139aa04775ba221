package payrollexception

import "time"

func mapToResponse(e Exception) ExceptionResponse {
	resp := ExceptionResponse{
		ID:              e.ID.String(),
		RunID:           e.RunID.String(),
		DraftVersion:    e.DraftVersion,
		LineItemID:      e.LineItemID.String(),
		EmployeeID:      e.EmployeeID.String(),
		Type:            string(e.Type),
		Severity:        string(e.Severity),
		Description:     e.Description,
		Status:          string(e.Status),
		ResolutionNotes: e.ResolutionNotes,
		AutoResolved:    e.AutoResolved,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
	if e.ResolvedBy != nil {
		v := e.ResolvedBy.String()
		resp.ResolvedBy = &v
	}
	if e.ResolvedAt != nil {
		v := e.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &v
	}
	return resp
}

func mapToListResponse(items []Exception) []ExceptionResponse {
	out := make([]ExceptionResponse, 0, len(items))
	for _, e := range items {
		out = append(out, mapToResponse(e))
	}
	return out
}
