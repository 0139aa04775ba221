package payrolladjustment_test

import (
	"context"
	"database/sql"
	"testing"

	"go-payroll/internal/payrolladjustment"
	payrolladjustmenterrors "go-payroll/internal/payrolladjustment/errors"
	"go-payroll/internal/payrollrun"
	"go-payroll/internal/payrollrun/payrollruntest"
	payrollrunerrors "go-payroll/internal/payrollrun/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryAdjustments struct {
	items map[uuid.UUID]payrolladjustment.Adjustment
}

func (m *memoryAdjustments) WithTx(tx *sql.Tx) payrolladjustment.Repository { return m }

func (m *memoryAdjustments) Create(ctx context.Context, a *payrolladjustment.Adjustment) error {
	m.items[a.ID] = *a
	return nil
}

func (m *memoryAdjustments) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payrolladjustment.Adjustment, error) {
	a, ok := m.items[uuid.MustParse(id)]
	if !ok || a.CompanyID.String() != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m *memoryAdjustments) FindByIDForUpdate(ctx context.Context, companyID, id string) (*payrolladjustment.Adjustment, error) {
	return m.FindByIDAndCompany(ctx, companyID, id)
}

func (m *memoryAdjustments) Update(ctx context.Context, a *payrolladjustment.Adjustment) error {
	m.items[a.ID] = *a
	return nil
}

func (m *memoryAdjustments) ListByRun(ctx context.Context, companyID, runID, lineItemID string) ([]payrolladjustment.Adjustment, error) {
	var out []payrolladjustment.Adjustment
	for _, a := range m.items {
		if a.RunID.String() == runID && (lineItemID == "" || a.LineItemID.String() == lineItemID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryAdjustments) CountByRunAndStatus(ctx context.Context, runID string, status payrolladjustment.Status) (int64, error) {
	var n int64
	for _, a := range m.items {
		if a.RunID.String() == runID && a.Status == status {
			n++
		}
	}
	return n, nil
}

type adjustmentFixture struct {
	svc         payrolladjustment.Service
	dbMock      sqlmock.Sqlmock
	runs        *payrollruntest.Repository
	adjustments *memoryAdjustments
	companyID   uuid.UUID
	actorID     uuid.UUID
	run         payrollrun.PayrollRun
	line        payrollrun.LineItem
}

func setupAdjustmentTest(t *testing.T, status payrollrun.Status, requiresApproval bool) *adjustmentFixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	companyID := uuid.New()
	run := payrollrun.PayrollRun{
		ID:           uuid.New(),
		CompanyID:    companyID,
		Status:       status,
		DraftVersion: 2,
		Version:      5,
		TotalNet:     5100,
	}
	line := payrollrun.LineItem{
		ID:           uuid.New(),
		CompanyID:    companyID,
		RunID:        run.ID,
		DraftVersion: 2,
		EmployeeID:   uuid.New(),
		Gross:        6000,
		Net:          5100,
		FinalPaid:    5100,
		Version:      1,
	}
	runs := payrollruntest.NewRepository()
	runs.Runs[run.ID] = run
	runs.Lines[line.ID] = line
	adjustments := &memoryAdjustments{items: map[uuid.UUID]payrolladjustment.Adjustment{}}

	svc := payrolladjustment.NewService(payrolladjustment.Deps{
		DB:               db,
		Repo:             adjustments,
		Runs:             runs,
		Guard:            payrollrun.NewRunGuard(runs),
		RequiresApproval: requiresApproval,
	})

	return &adjustmentFixture{
		svc:         svc,
		dbMock:      mock,
		runs:        runs,
		adjustments: adjustments,
		companyID:   companyID,
		actorID:     uuid.New(),
		run:         run,
		line:        line,
	}
}

func (f *adjustmentFixture) bonus(amount int64) payrolladjustment.ApplyAdjustmentRequest {
	return payrolladjustment.ApplyAdjustmentRequest{
		LineItemID: f.line.ID.String(),
		Type:       "BONUS",
		Amount:     amount,
		Reason:     "project delivery",
	}
}

func TestService_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("bonus applied immediately", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, false)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		resp, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), f.bonus(200))

		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		assert.Equal(t, "final_paid_salary", resp.Field)
		assert.Equal(t, int64(5100), resp.OldValue)
		assert.Equal(t, int64(5300), resp.NewValue)
		assert.Equal(t, int64(200), resp.Delta)

		line := f.runs.Lines[f.line.ID]
		assert.Equal(t, int64(200), line.AdjustmentTotal)
		assert.Equal(t, int64(5300), line.FinalPaid)
		assert.Equal(t, int64(5100), line.Net)
		assert.Equal(t, 2, line.Version)

		run := f.runs.Runs[f.run.ID]
		assert.Equal(t, int64(5300), run.TotalFinalPaid)
		assert.Equal(t, int64(5100), run.TotalNet)
		assert.Equal(t, 6, run.Version)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("pending when approval required", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, true)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		resp, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), f.bonus(200))

		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, int64(5300), resp.NewValue)
		assert.Equal(t, int64(5100), f.runs.Lines[f.line.ID].FinalPaid)
		assert.Equal(t, 5, f.runs.Runs[f.run.ID].Version)
	})

	t.Run("stale expected value", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, false)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		req := f.bonus(200)
		stale := int64(5000)
		req.ExpectedOldValue = &stale
		_, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), req)

		assert.ErrorIs(t, err, payrolladjustmenterrors.ErrStaleValue)
		assert.ErrorIs(t, err, apperror.ErrConcurrencyConflict)
		assert.Empty(t, f.adjustments.items)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("run past review", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusPublishedForApproval, false)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		_, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), f.bonus(200))

		assert.ErrorIs(t, err, payrollrunerrors.ErrRunNotEditable)
		assert.Empty(t, f.adjustments.items)
	})

	t.Run("line from a superseded draft", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, false)
		old := f.runs.Lines[f.line.ID]
		old.DraftVersion = 1
		f.runs.Lines[f.line.ID] = old
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		_, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), f.bonus(200))

		assert.ErrorIs(t, err, payrolladjustmenterrors.ErrLineNotCurrent)
	})

	t.Run("validation before any tx", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, false)

		req := f.bonus(0)
		_, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), req)

		assert.ErrorIs(t, err, payrolladjustmenterrors.ErrAmountMustBePositive)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("manual override targets a value", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, false)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		resp, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), payrolladjustment.ApplyAdjustmentRequest{
			LineItemID: f.line.ID.String(),
			Type:       "manual_override",
			Amount:     4800,
			Reason:     "agreed settlement",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(-300), resp.Delta)
		assert.Equal(t, int64(4800), f.runs.Lines[f.line.ID].FinalPaid)
	})
}

func TestService_ApproveAndReject(t *testing.T) {
	ctx := context.Background()

	t.Run("approve applies pending adjustment", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, true)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()
		pending, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), f.bonus(200))
		require.NoError(t, err)

		approver := uuid.New()
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()
		resp, err := f.svc.Approve(ctx, f.companyID.String(), approver.String(), pending.ID)

		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		require.NotNil(t, resp.ApprovedBy)
		assert.Equal(t, approver.String(), *resp.ApprovedBy)
		assert.Equal(t, int64(5300), f.runs.Lines[f.line.ID].FinalPaid)
		assert.Equal(t, int64(5300), f.runs.Runs[f.run.ID].TotalFinalPaid)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()
		_, err = f.svc.Approve(ctx, f.companyID.String(), approver.String(), pending.ID)
		assert.ErrorIs(t, err, payrolladjustmenterrors.ErrNotPending)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("reject leaves the line untouched", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, true)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()
		pending, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), f.bonus(200))
		require.NoError(t, err)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()
		resp, err := f.svc.Reject(ctx, f.companyID.String(), uuid.NewString(), pending.ID, payrolladjustment.RejectAdjustmentRequest{Reason: "not budgeted"})

		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		require.NotNil(t, resp.RejectionReason)
		assert.Equal(t, "not budgeted", *resp.RejectionReason)
		assert.Equal(t, int64(5100), f.runs.Lines[f.line.ID].FinalPaid)
	})

	t.Run("creator cannot approve their own adjustment", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, true)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()
		pending, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), f.bonus(200))
		require.NoError(t, err)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()
		_, err = f.svc.Approve(ctx, f.companyID.String(), f.actorID.String(), pending.ID)

		assert.ErrorIs(t, err, payrolladjustmenterrors.ErrSelfApproval)
		assert.Equal(t, payrolladjustment.StatusPending, f.adjustments.items[uuid.MustParse(pending.ID)].Status)
		assert.Equal(t, int64(5100), f.runs.Lines[f.line.ID].FinalPaid)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("creator may withdraw their own adjustment", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, true)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()
		pending, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), f.bonus(200))
		require.NoError(t, err)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()
		resp, err := f.svc.Reject(ctx, f.companyID.String(), f.actorID.String(), pending.ID, payrolladjustment.RejectAdjustmentRequest{Reason: "entered twice"})

		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
	})

	t.Run("reject needs a reason", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, true)

		_, err := f.svc.Reject(ctx, f.companyID.String(), f.actorID.String(), uuid.NewString(), payrolladjustment.RejectAdjustmentRequest{Reason: " "})

		assert.ErrorIs(t, err, payrolladjustmenterrors.ErrReasonRequired)
	})

	t.Run("unknown adjustment", func(t *testing.T) {
		f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, true)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		_, err := f.svc.Approve(ctx, f.companyID.String(), f.actorID.String(), uuid.NewString())

		assert.ErrorIs(t, err, payrolladjustmenterrors.ErrAdjustmentNotFound)
	})
}

func TestService_ListByRun(t *testing.T) {
	f := setupAdjustmentTest(t, payrollrun.StatusUnderReview, false)
	ctx := context.Background()
	f.dbMock.ExpectBegin()
	f.dbMock.ExpectCommit()
	_, err := f.svc.Apply(ctx, f.companyID.String(), f.actorID.String(), f.run.ID.String(), f.bonus(200))
	require.NoError(t, err)

	items, err := f.svc.ListByRun(ctx, f.companyID.String(), f.run.ID.String(), payrolladjustment.ListAdjustmentsQuery{LineItemID: f.line.ID.String()})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = f.svc.ListByRun(ctx, f.companyID.String(), f.run.ID.String(), payrolladjustment.ListAdjustmentsQuery{LineItemID: "nope"})
	assert.ErrorIs(t, err, payrolladjustmenterrors.ErrInvalidLineItemID)
}
