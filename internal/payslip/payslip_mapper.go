package payslip

import (
	"time"

	"go-payroll/internal/payrollrun"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// fromLine copies every amount so later adjustments never reach an issued payslip.
func fromLine(run payrollrun.PayrollRun, line payrollrun.LineItem, number, currency string, actor uuid.UUID, now time.Time) Payslip {
	return Payslip{
		ID:                 uuid.New(),
		CompanyID:          run.CompanyID,
		PayslipNumber:      number,
		RunID:              run.ID,
		LineItemID:         line.ID,
		EmployeeID:         line.EmployeeID,
		EmployeeName:       line.EmployeeName,
		PeriodStart:        run.PeriodStart,
		PeriodEnd:          run.PeriodEnd,
		Currency:           currency,
		BaseSalary:         line.BaseSalary,
		Allowances:         clone(line.Allowances),
		SigningBonus:       line.SigningBonus,
		TerminationBenefit: line.TerminationBenefit,
		LeaveCompensation:  line.LeaveCompensation,
		Overtime:           line.Overtime,
		Deductions:         clone(line.Deductions),
		Penalties:          clone(line.Penalties),
		Gross:              line.Gross,
		DeductionTotal:     line.DeductionTotal,
		PenaltyTotal:       line.PenaltyTotal,
		Net:                line.Net,
		AdjustmentTotal:    line.AdjustmentTotal,
		FinalPaid:          line.FinalPaid,
		BankName:           line.BankName,
		BankAccountNumber:  line.BankAccountNumber,
		BankAccountHolder:  line.BankAccountHolder,
		Status:             StatusGenerated,
		GeneratedBy:        actor,
		GeneratedAt:        now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func mapToResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:                 p.ID.String(),
		PayslipNumber:      p.PayslipNumber,
		RunID:              p.RunID.String(),
		LineItemID:         p.LineItemID.String(),
		EmployeeID:         p.EmployeeID.String(),
		EmployeeName:       p.EmployeeName,
		PeriodStart:        p.PeriodStart.Format(dateLayout),
		PeriodEnd:          p.PeriodEnd.Format(dateLayout),
		Currency:           p.Currency,
		BaseSalary:         p.BaseSalary,
		Allowances:         p.Allowances,
		SigningBonus:       p.SigningBonus,
		TerminationBenefit: p.TerminationBenefit,
		LeaveCompensation:  p.LeaveCompensation,
		Overtime:           p.Overtime,
		Deductions:         p.Deductions,
		Penalties:          p.Penalties,
		Gross:              p.Gross,
		DeductionTotal:     p.DeductionTotal,
		PenaltyTotal:       p.PenaltyTotal,
		Net:                p.Net,
		AdjustmentTotal:    p.AdjustmentTotal,
		FinalPaid:          p.FinalPaid,
		Status:             string(p.Status),
		GeneratedAt:        p.GeneratedAt.Format(time.RFC3339),
		SentAt:             timeString(p.SentAt),
		ViewedAt:           timeString(p.ViewedAt),
		DownloadedAt:       timeString(p.DownloadedAt),
	}
}

func mapToListResponse(items []Payslip) []PayslipResponse {
	out := make([]PayslipResponse, 0, len(items))
	for _, p := range items {
		out = append(out, mapToResponse(p))
	}
	return out
}
