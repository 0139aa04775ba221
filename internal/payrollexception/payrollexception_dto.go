package payrollexception

type ListExceptionsQuery struct {
	Status   string `form:"status"`
	Severity string `form:"severity"`
}

type ResolveExceptionRequest struct {
	Notes string `json:"notes" binding:"required"`
}

type ExceptionResponse struct {
	ID              string  `json:"id"`
	RunID           string  `json:"run_id"`
	DraftVersion    int     `json:"draft_version"`
	LineItemID      string  `json:"line_item_id"`
	EmployeeID      string  `json:"employee_id"`
	Type            string  `json:"type"`
	Severity        string  `json:"severity"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	ResolvedBy      *string `json:"resolved_by,omitempty"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`
	ResolutionNotes *string `json:"resolution_notes,omitempty"`
	AutoResolved    bool    `json:"auto_resolved"`
	CreatedAt       string  `json:"created_at"`
}

// ListFilter narrows a run's exceptions. Empty fields match everything.
type ListFilter struct {
	Status   Status
	Severity Severity
}
