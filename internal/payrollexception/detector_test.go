package payrollexception_test

import (
	"testing"
	"time"

	"go-payroll/internal/payrollexception"
	payrollexceptionerrors "go-payroll/internal/payrollexception/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanLine() payrollexception.LineSnapshot {
	return payrollexception.LineSnapshot{
		LineItemID:     uuid.NewString(),
		EmployeeID:     uuid.NewString(),
		BaseSalary:     5000,
		AllowanceTotal: 800,
		SigningBonus:   200,
		Gross:          6000,
		DeductionTotal: 900,
		Net:            5100,
		FinalPaid:      5100,
		BankComplete:   true,
	}
}

func typesOf(findings []payrollexception.Finding) []payrollexception.Type {
	out := make([]payrollexception.Type, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Type)
	}
	return out
}

func int64Ptr(v int64) *int64 { return &v }

func TestDetector_Scan(t *testing.T) {
	d := payrollexception.NewDetector(0.5, 0.5)

	tests := []struct {
		name     string
		mutate   func(l *payrollexception.LineSnapshot)
		expected []payrollexception.Type
		severity payrollexception.Severity
	}{
		{
			name:     "clean line",
			mutate:   func(l *payrollexception.LineSnapshot) {},
			expected: []payrollexception.Type{},
		},
		{
			name:     "missing bank details",
			mutate:   func(l *payrollexception.LineSnapshot) { l.BankComplete = false },
			expected: []payrollexception.Type{payrollexception.TypeMissingBankDetails},
			severity: payrollexception.SeverityMedium,
		},
		{
			name: "negative net pay",
			mutate: func(l *payrollexception.LineSnapshot) {
				l.DeductionTotal = 2500
				l.PenaltyTotal = 3600
				l.Net = -100
				l.FinalPaid = -100
			},
			expected: []payrollexception.Type{payrollexception.TypeNegativeNetPay, payrollexception.TypeExcessivePenalties},
			severity: payrollexception.SeverityHigh,
		},
		{
			name: "zero base salary",
			mutate: func(l *payrollexception.LineSnapshot) {
				l.BaseSalary = 0
				l.Gross = 1000
				l.Net = 100
				l.FinalPaid = 100
			},
			expected: []payrollexception.Type{payrollexception.TypeZeroBaseSalary},
			severity: payrollexception.SeverityHigh,
		},
		{
			name: "penalties at threshold are not excessive",
			mutate: func(l *payrollexception.LineSnapshot) {
				l.DeductionTotal = 0
				l.PenaltyTotal = 3000
				l.Net = 3000
				l.FinalPaid = 3000
			},
			expected: []payrollexception.Type{},
		},
		{
			name: "penalties above threshold",
			mutate: func(l *payrollexception.LineSnapshot) {
				l.DeductionTotal = 0
				l.PenaltyTotal = 3001
				l.Net = 2999
				l.FinalPaid = 2999
			},
			expected: []payrollexception.Type{payrollexception.TypeExcessivePenalties},
			severity: payrollexception.SeverityHigh,
		},
		{
			name:     "salary spike",
			mutate:   func(l *payrollexception.LineSnapshot) { l.PreviousNet = int64Ptr(3000) },
			expected: []payrollexception.Type{payrollexception.TypeSalarySpike},
			severity: payrollexception.SeverityHigh,
		},
		{
			name:     "salary drop is not a spike",
			mutate:   func(l *payrollexception.LineSnapshot) { l.PreviousNet = int64Ptr(20000) },
			expected: []payrollexception.Type{},
		},
		{
			name:     "gross mismatch",
			mutate:   func(l *payrollexception.LineSnapshot) { l.Gross = 6001 },
			expected: []payrollexception.Type{payrollexception.TypeCalculationError},
			severity: payrollexception.SeverityCritical,
		},
		{
			name:     "final paid mismatch",
			mutate:   func(l *payrollexception.LineSnapshot) { l.AdjustmentTotal = 100 },
			expected: []payrollexception.Type{payrollexception.TypeCalculationError},
			severity: payrollexception.SeverityCritical,
		},
		{
			name: "calculator failure skips amount rules",
			mutate: func(l *payrollexception.LineSnapshot) {
				l.CalculationFailure = "negative amount"
				l.Net = -1
			},
			expected: []payrollexception.Type{payrollexception.TypeCalculationError},
			severity: payrollexception.SeverityCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := cleanLine()
			tt.mutate(&line)

			findings, err := d.Scan([]payrollexception.LineSnapshot{line})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, typesOf(findings))
			if len(tt.expected) > 0 {
				assert.Equal(t, tt.severity, findings[0].Severity)
				assert.Equal(t, line.LineItemID, findings[0].LineItemID)
			}
		})
	}
}

func TestDetector_ScanIsIdempotent(t *testing.T) {
	d := payrollexception.NewDetector(0.5, 0.5)
	line := cleanLine()
	line.BankComplete = false
	line.PreviousNet = int64Ptr(1000)

	first, err := d.Scan([]payrollexception.LineSnapshot{line})
	require.NoError(t, err)
	second, err := d.Scan([]payrollexception.LineSnapshot{line})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDetector_ScanMissingEmployee(t *testing.T) {
	d := payrollexception.NewDetector(0.5, 0.5)
	line := cleanLine()
	line.EmployeeID = ""

	_, err := d.Scan([]payrollexception.LineSnapshot{line})
	assert.ErrorIs(t, err, payrollexceptionerrors.ErrMissingEmployeeReference)
}

func TestReconcile(t *testing.T) {
	companyID := uuid.New()
	runID := uuid.New()
	lineID := uuid.New()
	employeeID := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	finding := payrollexception.Finding{
		LineItemID:  lineID.String(),
		EmployeeID:  employeeID.String(),
		Type:        payrollexception.TypeMissingBankDetails,
		Severity:    payrollexception.SeverityMedium,
		Description: "bank name or account number missing",
	}
	stored := func(status payrollexception.Status, version int) payrollexception.Exception {
		return payrollexception.Exception{
			ID:           uuid.New(),
			CompanyID:    companyID,
			RunID:        runID,
			DraftVersion: version,
			LineItemID:   lineID,
			EmployeeID:   employeeID,
			Type:         payrollexception.TypeMissingBankDetails,
			Severity:     payrollexception.SeverityMedium,
			Description:  finding.Description,
			Status:       status,
		}
	}

	t.Run("new finding is created", func(t *testing.T) {
		plan, err := payrollexception.Reconcile(companyID, runID, nil, []payrollexception.Finding{finding}, 1, now)
		require.NoError(t, err)
		require.Len(t, plan.Create, 1)
		assert.Equal(t, payrollexception.StatusOpen, plan.Create[0].Status)
		assert.Equal(t, 1, plan.Create[0].DraftVersion)
		assert.Equal(t, lineID, plan.Create[0].LineItemID)
		assert.Empty(t, plan.Refresh)
		assert.Empty(t, plan.Supersede)
	})

	t.Run("open finding found again is untouched", func(t *testing.T) {
		existing := []payrollexception.Exception{stored(payrollexception.StatusOpen, 1)}
		plan, err := payrollexception.Reconcile(companyID, runID, existing, []payrollexception.Finding{finding}, 1, now)
		require.NoError(t, err)
		assert.Empty(t, plan.Create)
		assert.Empty(t, plan.Refresh)
		assert.Empty(t, plan.Supersede)
	})

	t.Run("open finding on new draft is refreshed", func(t *testing.T) {
		existing := []payrollexception.Exception{stored(payrollexception.StatusInProgress, 1)}
		plan, err := payrollexception.Reconcile(companyID, runID, existing, []payrollexception.Finding{finding}, 2, now)
		require.NoError(t, err)
		assert.Empty(t, plan.Create)
		require.Len(t, plan.Refresh, 1)
		assert.Equal(t, 2, plan.Refresh[0].DraftVersion)
		assert.Equal(t, payrollexception.StatusInProgress, plan.Refresh[0].Status)
	})

	t.Run("open finding no longer found is superseded", func(t *testing.T) {
		existing := []payrollexception.Exception{stored(payrollexception.StatusOpen, 1)}
		plan, err := payrollexception.Reconcile(companyID, runID, existing, nil, 2, now)
		require.NoError(t, err)
		require.Len(t, plan.Supersede, 1)
		assert.Equal(t, payrollexception.StatusResolved, plan.Supersede[0].Status)
		assert.True(t, plan.Supersede[0].AutoResolved)
		assert.Equal(t, now, *plan.Supersede[0].ResolvedAt)
	})

	t.Run("resolved in same draft is not re-raised", func(t *testing.T) {
		existing := []payrollexception.Exception{stored(payrollexception.StatusIgnored, 3)}
		plan, err := payrollexception.Reconcile(companyID, runID, existing, []payrollexception.Finding{finding}, 3, now)
		require.NoError(t, err)
		assert.Empty(t, plan.Create)
		assert.Empty(t, plan.Supersede)
	})

	t.Run("resolved in older draft stays settled while the finding is unchanged", func(t *testing.T) {
		existing := []payrollexception.Exception{stored(payrollexception.StatusResolved, 1)}
		plan, err := payrollexception.Reconcile(companyID, runID, existing, []payrollexception.Finding{finding}, 2, now)
		require.NoError(t, err)
		assert.Empty(t, plan.Create)
		assert.Empty(t, plan.Supersede)
	})

	t.Run("resolved in older draft is raised again when the finding changed", func(t *testing.T) {
		prev := stored(payrollexception.StatusIgnored, 1)
		prev.Type = payrollexception.TypeNegativeNetPay
		prev.Severity = payrollexception.SeverityHigh
		prev.Description = "net pay is negative (-50)"
		changed := payrollexception.Finding{
			LineItemID:  lineID.String(),
			EmployeeID:  employeeID.String(),
			Type:        payrollexception.TypeNegativeNetPay,
			Severity:    payrollexception.SeverityHigh,
			Description: "net pay is negative (-400)",
		}

		plan, err := payrollexception.Reconcile(companyID, runID, []payrollexception.Exception{prev}, []payrollexception.Finding{changed}, 2, now)
		require.NoError(t, err)
		require.Len(t, plan.Create, 1)
		assert.Equal(t, 2, plan.Create[0].DraftVersion)
		assert.Equal(t, "net pay is negative (-400)", plan.Create[0].Description)
	})

	t.Run("auto resolved finding that returns is raised again", func(t *testing.T) {
		prev := stored(payrollexception.StatusResolved, 1)
		prev.AutoResolved = true
		plan, err := payrollexception.Reconcile(companyID, runID, []payrollexception.Exception{prev}, []payrollexception.Finding{finding}, 3, now)
		require.NoError(t, err)
		require.Len(t, plan.Create, 1)
	})

	t.Run("duplicate findings collapse", func(t *testing.T) {
		plan, err := payrollexception.Reconcile(companyID, runID, nil, []payrollexception.Finding{finding, finding}, 1, now)
		require.NoError(t, err)
		assert.Len(t, plan.Create, 1)
	})

	t.Run("unparseable line id", func(t *testing.T) {
		bad := finding
		bad.LineItemID = "line-1"
		_, err := payrollexception.Reconcile(companyID, runID, nil, []payrollexception.Finding{bad}, 1, now)
		assert.ErrorIs(t, err, payrollexceptionerrors.ErrMissingEmployeeReference)
	})
}

func TestSeverity_AtLeast(t *testing.T) {
	assert.Equal(t,
		[]payrollexception.Severity{payrollexception.SeverityHigh, payrollexception.SeverityCritical},
		payrollexception.SeverityHigh.AtLeast(),
	)
	assert.Len(t, payrollexception.SeverityLow.AtLeast(), 4)
	assert.Nil(t, payrollexception.Severity("URGENT").AtLeast())
	assert.Greater(t, payrollexception.SeverityCritical.Rank(), payrollexception.SeverityMedium.Rank())
}
