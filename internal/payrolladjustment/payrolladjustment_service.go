package payrolladjustment

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	payrolladjustmenterrors "go-payroll/internal/payrolladjustment/errors"
	"go-payroll/internal/payrollrun"
	payrollrunerrors "go-payroll/internal/payrollrun/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunLocker locks the owning run inside tx and refuses runs past review.
type RunLocker interface {
	LockEditable(ctx context.Context, tx *sql.Tx, companyID, runID string) (*payrollrun.PayrollRun, error)
}

type Deps struct {
	DB               *sql.DB
	Repo             Repository
	Runs             payrollrun.Repository
	Guard            RunLocker
	RequiresApproval bool
	Metrics          *metrics.Payroll
}

type Service interface {
	Apply(ctx context.Context, companyID, actorID, runID string, req ApplyAdjustmentRequest) (AdjustmentResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (AdjustmentResponse, error)
	Reject(ctx context.Context, companyID, actorID, id string, req RejectAdjustmentRequest) (AdjustmentResponse, error)
	GetByID(ctx context.Context, companyID, id string) (AdjustmentResponse, error)
	ListByRun(ctx context.Context, companyID, runID string, q ListAdjustmentsQuery) ([]AdjustmentResponse, error)
}

type service struct {
	db               *sql.DB
	repo             Repository
	runs             payrollrun.Repository
	guard            RunLocker
	requiresApproval bool
	metrics          *metrics.Payroll
	logger           *zap.Logger
}

func NewService(deps Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("payrolladjustment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrolladjustment.service")
	}
	return &service{
		db:               deps.DB,
		repo:             deps.Repo,
		runs:             deps.Runs,
		guard:            deps.Guard,
		requiresApproval: deps.RequiresApproval,
		metrics:          deps.Metrics,
		logger:           l,
	}
}

func (s *service) Apply(ctx context.Context, companyID, actorID, runID string, req ApplyAdjustmentRequest) (AdjustmentResponse, error) {
	s.logger.Debug("apply adjustment requested",
		zap.String("run_id", runID),
		zap.String("line_item_id", req.LineItemID),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("type", req.Type),
	)

	actor, err := uuid.Parse(actorID)
	if err != nil {
		return AdjustmentResponse{}, apperror.ErrUnauthorized
	}
	if _, err := uuid.Parse(runID); err != nil {
		return AdjustmentResponse{}, payrollrunerrors.ErrInvalidRunID
	}
	if _, err := uuid.Parse(req.LineItemID); err != nil {
		return AdjustmentResponse{}, payrolladjustmenterrors.ErrInvalidLineItemID
	}

	adjType := Type(strings.ToUpper(strings.TrimSpace(req.Type)))
	field := Field(strings.TrimSpace(req.Field))
	if field == "" {
		field = FieldFinalPaidSalary
	}
	reason := strings.TrimSpace(req.Reason)
	if err := Validate(adjType, field, req.Amount, reason); err != nil {
		s.logger.Warn("apply adjustment validation failed", zap.String("run_id", runID), zap.Error(err))
		return AdjustmentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply adjustment begin tx failed", zap.Error(err))
		return AdjustmentResponse{}, err
	}
	defer tx.Rollback()

	run, err := s.guard.LockEditable(ctx, tx, companyID, runID)
	if err != nil {
		s.logger.Warn("apply adjustment run not editable", zap.String("run_id", runID), zap.Error(err))
		return AdjustmentResponse{}, err
	}

	rtx := s.runs.WithTx(tx)
	line, err := s.lockLine(ctx, rtx, companyID, req.LineItemID, run)
	if err != nil {
		return AdjustmentResponse{}, err
	}
	if req.ExpectedOldValue != nil && *req.ExpectedOldValue != line.FinalPaid {
		s.logger.Warn("apply adjustment stale value",
			zap.String("line_item_id", req.LineItemID),
			zap.Int64("expected", *req.ExpectedOldValue),
			zap.Int64("current", line.FinalPaid),
		)
		return AdjustmentResponse{}, payrolladjustmenterrors.ErrStaleValue
	}

	now := time.Now()
	delta := SignedDelta(adjType, req.Amount, line.FinalPaid)
	adj := &Adjustment{
		ID:         uuid.New(),
		CompanyID:  run.CompanyID,
		RunID:      run.ID,
		LineItemID: line.ID,
		EmployeeID: line.EmployeeID,
		Type:       adjType,
		Field:      field,
		Amount:     req.Amount,
		Delta:      delta,
		OldValue:   line.FinalPaid,
		NewValue:   line.FinalPaid + delta,
		Reason:     reason,
		Status:     StatusPending,
		CreatedBy:  actor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if !s.requiresApproval {
		if err := s.applyToLine(ctx, rtx, run, line, adj); err != nil {
			return AdjustmentResponse{}, err
		}
		adj.Status = StatusApproved
		adj.ApprovedBy = &actor
		adj.ApprovedAt = &now
	}

	if err := s.repo.WithTx(tx).Create(ctx, adj); err != nil {
		s.logger.Error("apply adjustment persist failed", zap.String("run_id", runID), zap.Error(err))
		return AdjustmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("apply adjustment commit failed", zap.Error(err))
		return AdjustmentResponse{}, err
	}
	s.metrics.Adjustment(string(adj.Type), string(adj.Status))
	s.logger.Info("apply adjustment success",
		zap.String("adjustment_id", adj.ID.String()),
		zap.String("run_id", runID),
		zap.String("status", string(adj.Status)),
		zap.Int64("delta", adj.Delta),
	)

	return mapToResponse(*adj), nil
}

func (s *service) Approve(ctx context.Context, companyID, actorID, id string) (AdjustmentResponse, error) {
	return s.decide(ctx, "approve", companyID, actorID, id, func(rtx payrollrun.Repository, run *payrollrun.PayrollRun, adj *Adjustment, actor uuid.UUID, now time.Time) error {
		if adj.CreatedBy == actor {
			s.logger.Warn("adjustment self approval refused", zap.String("adjustment_id", id), zap.String("actor_id", actorID))
			return payrolladjustmenterrors.ErrSelfApproval
		}
		line, err := s.lockLine(ctx, rtx, companyID, adj.LineItemID.String(), run)
		if err != nil {
			return err
		}
		adj.Delta = SignedDelta(adj.Type, adj.Amount, line.FinalPaid)
		adj.OldValue = line.FinalPaid
		adj.NewValue = line.FinalPaid + adj.Delta
		if err := s.applyToLine(ctx, rtx, run, line, adj); err != nil {
			return err
		}
		adj.Status = StatusApproved
		adj.ApprovedBy = &actor
		adj.ApprovedAt = &now
		return nil
	})
}

func (s *service) Reject(ctx context.Context, companyID, actorID, id string, req RejectAdjustmentRequest) (AdjustmentResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return AdjustmentResponse{}, payrolladjustmenterrors.ErrReasonRequired
	}
	return s.decide(ctx, "reject", companyID, actorID, id, func(rtx payrollrun.Repository, run *payrollrun.PayrollRun, adj *Adjustment, actor uuid.UUID, now time.Time) error {
		adj.Status = StatusRejected
		adj.RejectedBy = &actor
		adj.RejectedAt = &now
		adj.RejectionReason = &reason
		return nil
	})
}

// decide runs a pending adjustment's approval or rejection after re-validating its run.
func (s *service) decide(
	ctx context.Context,
	op, companyID, actorID, id string,
	apply func(rtx payrollrun.Repository, run *payrollrun.PayrollRun, adj *Adjustment, actor uuid.UUID, now time.Time) error,
) (AdjustmentResponse, error) {
	s.logger.Debug("adjustment "+op+" requested",
		zap.String("adjustment_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return AdjustmentResponse{}, payrolladjustmenterrors.ErrInvalidAdjustmentID
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return AdjustmentResponse{}, apperror.ErrUnauthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("adjustment "+op+" begin tx failed", zap.Error(err))
		return AdjustmentResponse{}, err
	}
	defer tx.Rollback()

	atx := s.repo.WithTx(tx)
	adj, err := atx.FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdjustmentResponse{}, payrolladjustmenterrors.ErrAdjustmentNotFound
		}
		s.logger.Error("adjustment "+op+" lookup failed", zap.String("adjustment_id", id), zap.Error(err))
		return AdjustmentResponse{}, err
	}
	if adj.Status != StatusPending {
		return AdjustmentResponse{}, payrolladjustmenterrors.ErrNotPending.WithDetails(map[string]string{"status": string(adj.Status)})
	}

	run, err := s.guard.LockEditable(ctx, tx, companyID, adj.RunID.String())
	if err != nil {
		s.logger.Warn("adjustment "+op+" run not editable", zap.String("run_id", adj.RunID.String()), zap.Error(err))
		return AdjustmentResponse{}, err
	}

	now := time.Now()
	if err := apply(s.runs.WithTx(tx), run, adj, actor, now); err != nil {
		return AdjustmentResponse{}, err
	}
	adj.UpdatedAt = now
	if err := atx.Update(ctx, adj); err != nil {
		s.logger.Error("adjustment "+op+" persist failed", zap.String("adjustment_id", id), zap.Error(err))
		return AdjustmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("adjustment "+op+" commit failed", zap.Error(err))
		return AdjustmentResponse{}, err
	}
	s.metrics.Adjustment(string(adj.Type), string(adj.Status))
	s.logger.Info("adjustment "+op+" success",
		zap.String("adjustment_id", id),
		zap.String("run_id", adj.RunID.String()),
		zap.String("actor_id", actorID),
	)

	return mapToResponse(*adj), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (AdjustmentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AdjustmentResponse{}, payrolladjustmenterrors.ErrInvalidAdjustmentID
	}
	adj, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdjustmentResponse{}, payrolladjustmenterrors.ErrAdjustmentNotFound
		}
		return AdjustmentResponse{}, err
	}
	return mapToResponse(*adj), nil
}

func (s *service) ListByRun(ctx context.Context, companyID, runID string, q ListAdjustmentsQuery) ([]AdjustmentResponse, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, payrollrunerrors.ErrInvalidRunID
	}
	lineItemID := strings.TrimSpace(q.LineItemID)
	if lineItemID != "" {
		if _, err := uuid.Parse(lineItemID); err != nil {
			return nil, payrolladjustmenterrors.ErrInvalidLineItemID
		}
	}

	items, err := s.repo.ListByRun(ctx, companyID, runID, lineItemID)
	if err != nil {
		s.logger.Error("list adjustments failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(items), nil
}

func (s *service) lockLine(ctx context.Context, rtx payrollrun.Repository, companyID, lineID string, run *payrollrun.PayrollRun) (*payrollrun.LineItem, error) {
	line, err := rtx.FindLineForUpdate(ctx, companyID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollrunerrors.ErrLineItemNotFound
		}
		s.logger.Error("adjustment line lock failed", zap.String("line_item_id", lineID), zap.Error(err))
		return nil, err
	}
	if line.RunID != run.ID || line.DraftVersion != run.DraftVersion {
		return nil, payrolladjustmenterrors.ErrLineNotCurrent
	}
	return line, nil
}

// applyToLine moves the delta into the line's adjustment total and refreshes the run totals.
func (s *service) applyToLine(ctx context.Context, rtx payrollrun.Repository, run *payrollrun.PayrollRun, line *payrollrun.LineItem, adj *Adjustment) error {
	now := time.Now()
	expectedLine := line.Version
	line.AdjustmentTotal += adj.Delta
	line.Recompute()
	line.Version++
	line.UpdatedAt = now
	if err := rtx.UpdateLineVersioned(ctx, line, expectedLine); err != nil {
		s.logger.Warn("adjustment line update failed", zap.String("line_item_id", line.ID.String()), zap.Error(err))
		return err
	}

	lines, err := rtx.ListLines(ctx, run.ID.String(), run.DraftVersion)
	if err != nil {
		return err
	}
	payrollrun.SumLines(lines, run.DraftVersion).ApplyTo(run)

	expectedRun := run.Version
	run.Version++
	run.UpdatedAt = now
	if err := rtx.UpdateVersioned(ctx, run, expectedRun); err != nil {
		s.logger.Warn("adjustment run totals update failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		return err
	}
	return nil
}
