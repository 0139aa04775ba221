package payrollrun

import (
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func mapToResponse(r PayrollRun) PayrollRunResponse {
	resp := PayrollRunResponse{
		ID:                    r.ID.String(),
		CompanyID:             r.CompanyID.String(),
		PeriodStart:           r.PeriodStart.Format(dateLayout),
		PeriodEnd:             r.PeriodEnd.Format(dateLayout),
		Status:                string(r.Status),
		Rejected:              r.IsRejected(),
		RejectedBy:            uuidString(r.RejectedBy),
		RejectedAt:            timeString(r.RejectedAt),
		RejectionReason:       r.RejectionReason,
		PeriodApprovedBy:      uuidString(r.PeriodApprovedBy),
		ManagerApprovedBy:     uuidString(r.ManagerApprovedBy),
		FinanceApprovedBy:     uuidString(r.FinanceApprovedBy),
		FinanceApprovedAt:     timeString(r.FinanceApprovedAt),
		FrozenBy:              uuidString(r.FrozenBy),
		FrozenAt:              timeString(r.FrozenAt),
		FreezeReason:          r.FreezeReason,
		UnfrozenBy:            uuidString(r.UnfrozenBy),
		UnfrozenAt:            timeString(r.UnfrozenAt),
		UnfreezeJustification: r.UnfreezeJustification,
		PaidAt:                timeString(r.PaidAt),
		TotalGross:            r.TotalGross,
		TotalDeductions:       r.TotalDeductions,
		TotalPenalties:        r.TotalPenalties,
		TotalNet:              r.TotalNet,
		TotalFinalPaid:        r.TotalFinalPaid,
		EmployeeCount:         r.EmployeeCount,
		ExceptionCount:        r.ExceptionCount,
		DraftVersion:          r.DraftVersion,
		Version:               r.Version,
		CreatedBy:             r.CreatedBy.String(),
		CreatedAt:             r.CreatedAt.Format(time.RFC3339),
	}
	if r.LastEvent != nil {
		v := string(*r.LastEvent)
		resp.LastEvent = &v
	}
	if r.RejectionStage != nil {
		v := string(*r.RejectionStage)
		resp.RejectionStage = &v
	}
	return resp
}

func mapToListResponse(runs []PayrollRun) []PayrollRunResponse {
	out := make([]PayrollRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, mapToResponse(r))
	}
	return out
}

func mapLineToResponse(l LineItem) LineItemResponse {
	return LineItemResponse{
		ID:                    l.ID.String(),
		RunID:                 l.RunID.String(),
		DraftVersion:          l.DraftVersion,
		EmployeeID:            l.EmployeeID.String(),
		EmployeeName:          l.EmployeeName,
		DepartmentName:        l.DepartmentName,
		PositionName:          l.PositionName,
		BaseSalary:            l.BaseSalary,
		Allowances:            l.Allowances,
		AllowanceTotal:        l.AllowanceTotal,
		SigningBonus:          l.SigningBonus,
		SigningBonusRef:       l.SigningBonusRef,
		TerminationBenefit:    l.TerminationBenefit,
		TerminationBenefitRef: l.TerminationBenefitRef,
		Gross:                 l.Gross,
		Deductions:            l.Deductions,
		DeductionTotal:        l.DeductionTotal,
		Penalties:             l.Penalties,
		PenaltyTotal:          l.PenaltyTotal,
		Net:                   l.Net,
		AdjustmentTotal:       l.AdjustmentTotal,
		FinalPaid:             l.FinalPaid,
		BankName:              l.BankName,
		BankAccountNumber:     l.BankAccountNumber,
		IsBankDetailsMissing:  l.IsBankDetailsMissing,
		HasNegativeNetPay:     l.HasNegativeNetPay,
		IsFlagged:             l.IsFlagged,
		FlagReason:            l.FlagReason,
		Version:               l.Version,
	}
}

func mapLinesToResponse(lines []LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, mapLineToResponse(l))
	}
	return out
}

func mapTransitionsToResponse(items []Transition) []TransitionHistoryResponse {
	out := make([]TransitionHistoryResponse, 0, len(items))
	for _, t := range items {
		out = append(out, TransitionHistoryResponse{
			ID:         t.ID.String(),
			Event:      string(t.Event),
			FromStatus: string(t.FromStatus),
			ToStatus:   string(t.ToStatus),
			ActorID:    t.ActorID.String(),
			ActorRole:  t.ActorRole,
			Reason:     t.Reason,
			Rejection:  t.Rejection,
			CreatedAt:  t.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}
