package payrollrun

import (
	"context"
	"time"

	"go-payroll/internal/payrollcalc"
	"go-payroll/internal/payrollexception"
	payrollrunerrors "go-payroll/internal/payrollrun/errors"
	"go-payroll/internal/payrollsource"
	payrollsourceerrors "go-payroll/internal/payrollsource/errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Sources are the collaborator reads a draft is computed from.
type Sources struct {
	Employees   payrollsource.EmployeeDirectory
	Attendance  payrollsource.AttendanceSource
	PreRunItems payrollsource.PreRunItemSource
	Rates       payrollsource.RateConfigProvider
	PreviousNet payrollsource.PreviousNetSource
}

type draftInputs struct {
	employees   []payrollsource.Employee
	attendance  map[string]payrollcalc.Attendance
	preRunItems []payrollsource.PreRunItem
	rates       payrollcalc.RateConfig
	previousNet map[string]int64
}

// loadDraftInputs reads all collaborators concurrently. Any failure is structural.
func loadDraftInputs(ctx context.Context, src Sources, companyID string, run PayrollRun, workingDaysDefault int) (draftInputs, error) {
	period := payrollsource.Period{Start: run.PeriodStart, End: run.PeriodEnd}
	var in draftInputs

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in.employees, err = src.Employees.ListPayable(gctx, companyID, period)
		return err
	})
	g.Go(func() error {
		var err error
		in.attendance, err = src.Attendance.Summaries(gctx, companyID, period)
		return err
	})
	g.Go(func() error {
		var err error
		in.preRunItems, err = src.PreRunItems.ListForPeriod(gctx, companyID, period)
		return err
	})
	g.Go(func() error {
		var err error
		in.rates, err = src.Rates.Current(gctx, companyID, run.PeriodEnd)
		return err
	})
	g.Go(func() error {
		var err error
		in.previousNet, err = src.PreviousNet.PreviousNet(gctx, companyID, run.PeriodStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return draftInputs{}, err
	}

	if len(in.employees) == 0 {
		return draftInputs{}, payrollsourceerrors.ErrNoPayableEmployees
	}
	if in.rates.WorkingDays <= 0 {
		in.rates.WorkingDays = workingDaysDefault
	}
	if err := payrollcalc.ValidateRates(in.rates); err != nil {
		return draftInputs{}, err
	}
	return in, nil
}

type approvedItems struct {
	signingBonus       *payrollcalc.ApprovedItem
	terminationBenefit *payrollcalc.ApprovedItem
}

// approvedByEmployee folds approved pre-run items per employee. Several items of one kind are
// summed and referenced by the first one.
func approvedByEmployee(items []payrollsource.PreRunItem, known map[string]bool) (map[string]approvedItems, error) {
	out := map[string]approvedItems{}
	for _, item := range items {
		if item.Status != payrollsource.PreRunStatusApproved {
			continue
		}
		employeeID := item.EmployeeID.String()
		if !known[employeeID] {
			return nil, payrollrunerrors.ErrUnknownEmployee.WithDetails(map[string]string{
				"employee_id":     employeeID,
				"pre_run_item_id": item.ID.String(),
			})
		}

		cur := out[employeeID]
		switch item.Kind {
		case payrollsource.PreRunSigningBonus:
			cur.signingBonus = addItem(cur.signingBonus, item)
		case payrollsource.PreRunTerminationBenefit:
			cur.terminationBenefit = addItem(cur.terminationBenefit, item)
		}
		out[employeeID] = cur
	}
	return out, nil
}

func addItem(cur *payrollcalc.ApprovedItem, item payrollsource.PreRunItem) *payrollcalc.ApprovedItem {
	if cur == nil {
		return &payrollcalc.ApprovedItem{ID: item.ID.String(), Amount: item.Amount}
	}
	cur.Amount += item.Amount
	return cur
}

// buildLines computes one line per payable employee for draftVersion. Lines already stored for an
// employee keep their id and applied adjustments.
func buildLines(
	run PayrollRun,
	draftVersion int,
	in draftInputs,
	existing []LineItem,
	now time.Time,
) ([]LineItem, []payrollexception.LineSnapshot, error) {
	known := make(map[string]bool, len(in.employees))
	for _, e := range in.employees {
		known[e.ID] = true
	}
	approved, err := approvedByEmployee(in.preRunItems, known)
	if err != nil {
		return nil, nil, err
	}

	stored := make(map[uuid.UUID]LineItem, len(existing))
	for _, l := range existing {
		stored[l.EmployeeID] = l
	}

	lines := make([]LineItem, 0, len(in.employees))
	snapshots := make([]payrollexception.LineSnapshot, 0, len(in.employees))
	for _, emp := range in.employees {
		employeeID, err := uuid.Parse(emp.ID)
		if err != nil {
			return nil, nil, payrollrunerrors.ErrInvalidEmployeeReference.WithDetails(map[string]string{"employee_id": emp.ID})
		}

		line := LineItem{
			ID:                uuid.New(),
			CompanyID:         run.CompanyID,
			RunID:             run.ID,
			DraftVersion:      draftVersion,
			EmployeeID:        employeeID,
			EmployeeName:      emp.Name,
			DepartmentName:    emp.DepartmentName,
			PositionName:      emp.PositionName,
			BankName:          emp.Bank.BankName,
			BankAccountNumber: emp.Bank.AccountNumber,
			BankAccountHolder: emp.Bank.AccountHolder,
			Version:           1,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if prev, ok := stored[employeeID]; ok {
			line.ID = prev.ID
			line.AdjustmentTotal = prev.AdjustmentTotal
			line.Version = prev.Version + 1
			line.CreatedAt = prev.CreatedAt
		}

		extra := approved[emp.ID]
		result, calcErr := payrollcalc.ComputeLine(payrollcalc.Inputs{
			EmployeeID:         emp.ID,
			BaseSalary:         emp.BaseSalary,
			Allowances:         emp.Allowances,
			Attendance:         in.attendance[emp.ID],
			SigningBonus:       extra.signingBonus,
			TerminationBenefit: extra.terminationBenefit,
		}, in.rates)

		failure := ""
		if calcErr != nil {
			failure = calcErr.Error()
			line.IsFlagged = true
			line.FlagReason = &failure
			line.Allowances = emp.Allowances
			line.Deductions = []payrollcalc.Deduction{}
			line.Penalties = []payrollcalc.Penalty{}
		} else {
			fillAmounts(&line, result)
		}
		line.Recompute()
		line.IsBankDetailsMissing = !emp.Bank.Complete()

		snapshot := payrollexception.LineSnapshot{
			LineItemID:         line.ID.String(),
			EmployeeID:         emp.ID,
			EmployeeName:       emp.Name,
			BaseSalary:         line.BaseSalary,
			AllowanceTotal:     line.AllowanceTotal,
			SigningBonus:       line.SigningBonus,
			TerminationBenefit: line.TerminationBenefit,
			Gross:              line.Gross,
			DeductionTotal:     line.DeductionTotal,
			PenaltyTotal:       line.PenaltyTotal,
			Net:                line.Net,
			AdjustmentTotal:    line.AdjustmentTotal,
			FinalPaid:          line.FinalPaid,
			BankComplete:       emp.Bank.Complete(),
			CalculationFailure: failure,
		}
		if prevNet, ok := in.previousNet[emp.ID]; ok {
			snapshot.PreviousNet = &prevNet
		}

		lines = append(lines, line)
		snapshots = append(snapshots, snapshot)
	}
	return lines, snapshots, nil
}

func fillAmounts(line *LineItem, r payrollcalc.Line) {
	line.BaseSalary = r.BaseSalary
	line.Allowances = r.Allowances
	if line.Allowances == nil {
		line.Allowances = []payrollcalc.Allowance{}
	}
	line.AllowanceTotal = r.AllowanceTotal
	line.LeaveCompensation = r.AllowanceTotalOf(payrollcalc.KindLeaveCompensation)
	line.Overtime = r.AllowanceTotalOf(payrollcalc.KindOvertime)
	line.SigningBonus = r.SigningBonus
	line.TerminationBenefit = r.TerminationBenefit
	if r.SigningBonusRef != "" {
		ref := r.SigningBonusRef
		line.SigningBonusRef = &ref
	}
	if r.TerminationBenefitRef != "" {
		ref := r.TerminationBenefitRef
		line.TerminationBenefitRef = &ref
	}
	line.Gross = r.Gross
	line.Deductions = r.Deductions
	if line.Deductions == nil {
		line.Deductions = []payrollcalc.Deduction{}
	}
	line.DeductionTotal = r.DeductionTotal
	line.Penalties = r.Penalties
	if line.Penalties == nil {
		line.Penalties = []payrollcalc.Penalty{}
	}
	line.PenaltyTotal = r.PenaltyTotal
	line.Net = r.Net
}
