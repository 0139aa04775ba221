package payrollexception

import (
	"fmt"
	"time"

	payrollexceptionerrors "go-payroll/internal/payrollexception/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineSnapshot is the detector's view of one draft line.
type LineSnapshot struct {
	LineItemID         string
	EmployeeID         string
	EmployeeName       string
	BaseSalary         int64
	AllowanceTotal     int64
	SigningBonus       int64
	TerminationBenefit int64
	Gross              int64
	DeductionTotal     int64
	PenaltyTotal       int64
	Net                int64
	AdjustmentTotal    int64
	FinalPaid          int64
	BankComplete       bool
	PreviousNet        *int64
	// CalculationFailure carries the calculator error for lines that could not be computed.
	CalculationFailure string
}

type Finding struct {
	LineItemID  string
	EmployeeID  string
	Type        Type
	Severity    Severity
	Description string
}

type Detector struct {
	penaltyThreshold decimal.Decimal
	spikeThreshold   decimal.Decimal
}

func NewDetector(penaltyThreshold, spikeThreshold float64) *Detector {
	return &Detector{
		penaltyThreshold: decimal.NewFromFloat(penaltyThreshold),
		spikeThreshold:   decimal.NewFromFloat(spikeThreshold),
	}
}

// Scan evaluates every rule against every line. The result depends only on the input.
func (d *Detector) Scan(lines []LineSnapshot) ([]Finding, error) {
	var findings []Finding
	for _, l := range lines {
		if l.LineItemID == "" || l.EmployeeID == "" {
			return nil, payrollexceptionerrors.ErrMissingEmployeeReference
		}
		findings = append(findings, d.scanLine(l)...)
	}
	return findings, nil
}

func (d *Detector) scanLine(l LineSnapshot) []Finding {
	var out []Finding
	add := func(t Type, sev Severity, format string, args ...any) {
		out = append(out, Finding{
			LineItemID:  l.LineItemID,
			EmployeeID:  l.EmployeeID,
			Type:        t,
			Severity:    sev,
			Description: fmt.Sprintf(format, args...),
		})
	}

	if !l.BankComplete {
		add(TypeMissingBankDetails, SeverityMedium, "bank name or account number missing for employee %s", l.EmployeeID)
	}

	if l.CalculationFailure != "" {
		add(TypeCalculationError, SeverityCritical, "calculation failed: %s", l.CalculationFailure)
		return out
	}

	if l.Net < 0 {
		add(TypeNegativeNetPay, SeverityHigh, "net pay is negative (%d)", l.Net)
	}
	if l.BaseSalary == 0 {
		add(TypeZeroBaseSalary, SeverityHigh, "base salary is zero")
	}

	limit := decimal.NewFromInt(l.Gross).Mul(d.penaltyThreshold)
	if decimal.NewFromInt(l.PenaltyTotal).GreaterThan(limit) {
		add(TypeExcessivePenalties, SeverityHigh, "penalties %d exceed %s of gross %d",
			l.PenaltyTotal, d.penaltyThreshold.String(), l.Gross)
	}

	if l.PreviousNet != nil && *l.PreviousNet > 0 {
		prev := decimal.NewFromInt(*l.PreviousNet)
		change := decimal.NewFromInt(l.Net).Sub(prev)
		if change.GreaterThan(prev.Mul(d.spikeThreshold)) {
			add(TypeSalarySpike, SeverityHigh, "net pay %d rose from previous %d", l.Net, *l.PreviousNet)
		}
	}

	if mismatch := componentMismatch(l); mismatch != "" {
		add(TypeCalculationError, SeverityCritical, "%s", mismatch)
	}

	return out
}

func componentMismatch(l LineSnapshot) string {
	gross := l.BaseSalary + l.AllowanceTotal + l.SigningBonus + l.TerminationBenefit
	if gross != l.Gross {
		return fmt.Sprintf("gross %d does not match components %d", l.Gross, gross)
	}
	net := l.Gross - l.DeductionTotal - l.PenaltyTotal
	if net != l.Net {
		return fmt.Sprintf("net %d does not match gross minus deductions and penalties %d", l.Net, net)
	}
	final := l.Net + l.AdjustmentTotal
	if final != l.FinalPaid {
		return fmt.Sprintf("final paid %d does not match net plus adjustments %d", l.FinalPaid, final)
	}
	return ""
}

// ReconcilePlan lists the writes that bring stored exceptions in line with a scan.
type ReconcilePlan struct {
	Create    []Exception
	Refresh   []Exception
	Supersede []Exception
}

// Reconcile matches findings to existing exceptions by (line item, type).
// Open pairs that are still found are refreshed, open pairs no longer found are auto-resolved.
// A pair a person resolved or ignored stays settled within its draft version, and on later
// drafts while the recomputed line yields the same finding. Everything else is created.
func Reconcile(companyID, runID uuid.UUID, existing []Exception, findings []Finding, draftVersion int, now time.Time) (ReconcilePlan, error) {
	open := map[string]Exception{}
	settledInDraft := map[string]bool{}
	settledFinding := map[string]bool{}
	for _, e := range existing {
		switch {
		case !e.Status.Terminal():
			open[e.key()] = e
		case e.DraftVersion == draftVersion:
			settledInDraft[e.key()] = true
		case !e.AutoResolved:
			settledFinding[findingKey(e.key(), e.Severity, e.Description)] = true
		}
	}

	var plan ReconcilePlan
	seen := map[string]bool{}
	for _, f := range findings {
		lineUUID, err := uuid.Parse(f.LineItemID)
		if err != nil {
			return ReconcilePlan{}, payrollexceptionerrors.ErrMissingEmployeeReference
		}
		employeeUUID, err := uuid.Parse(f.EmployeeID)
		if err != nil {
			return ReconcilePlan{}, payrollexceptionerrors.ErrMissingEmployeeReference
		}

		key := lineUUID.String() + "/" + string(f.Type)
		if seen[key] {
			continue
		}
		seen[key] = true

		if e, ok := open[key]; ok {
			if e.DraftVersion != draftVersion || e.Description != f.Description || e.Severity != f.Severity {
				e.DraftVersion = draftVersion
				e.Description = f.Description
				e.Severity = f.Severity
				e.UpdatedAt = now
				plan.Refresh = append(plan.Refresh, e)
			}
			continue
		}
		if settledInDraft[key] || settledFinding[findingKey(key, f.Severity, f.Description)] {
			continue
		}

		plan.Create = append(plan.Create, Exception{
			ID:           uuid.New(),
			CompanyID:    companyID,
			RunID:        runID,
			DraftVersion: draftVersion,
			LineItemID:   lineUUID,
			EmployeeID:   employeeUUID,
			Type:         f.Type,
			Severity:     f.Severity,
			Description:  f.Description,
			Status:       StatusOpen,
		})
	}

	for _, e := range existing {
		if e.Status.Terminal() || seen[e.key()] {
			continue
		}
		notes := fmt.Sprintf("superseded by draft version %d", draftVersion)
		resolvedAt := now
		e.Status = StatusResolved
		e.AutoResolved = true
		e.ResolvedAt = &resolvedAt
		e.ResolutionNotes = &notes
		e.UpdatedAt = now
		plan.Supersede = append(plan.Supersede, e)
	}

	return plan, nil
}

func findingKey(pair string, severity Severity, description string) string {
	return pair + "\x00" + string(severity) + "\x00" + description
}
