package payrollrun

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-payroll/internal/config"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrollexception"
	payrollrunerrors "go-payroll/internal/payrollrun/errors"
	"go-payroll/internal/payrollsource"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// AdjustmentCounter reports adjustments still waiting for approval, read inside tx.
type AdjustmentCounter interface {
	CountPendingByRun(ctx context.Context, tx *sql.Tx, runID string) (int64, error)
}

type Deps struct {
	DB          *sql.DB
	Repo        Repository
	Sources     Sources
	Exceptions  payrollexception.Repository
	Adjustments AdjustmentCounter
	Outbox      kafka.OutboxRepository
	Policy      config.PayrollPolicy
	Metrics     *metrics.Payroll
}

type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreatePayrollRunRequest) (PayrollRunResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PayrollRunResponse, error)
	List(ctx context.Context, companyID string, q ListPayrollRunsQuery) ([]PayrollRunResponse, int64, error)
	ListLines(ctx context.Context, companyID, id string) ([]LineItemResponse, error)
	History(ctx context.Context, companyID, id string) ([]TransitionHistoryResponse, error)
	EditPeriod(ctx context.Context, companyID, actorID, role, id string, req EditPeriodRequest) (PayrollRunResponse, error)
	Transition(ctx context.Context, companyID, actorID, role, id string, req TransitionRequest) (TransitionResponse, error)
	GenerateDraft(ctx context.Context, companyID, actorID, role, id string) (DraftResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	sources     Sources
	exceptions  payrollexception.Repository
	adjustments AdjustmentCounter
	outbox      kafka.OutboxRepository
	policy      config.PayrollPolicy
	detector    *payrollexception.Detector
	metrics     *metrics.Payroll
	logger      *zap.Logger
}

func NewService(deps Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("payrollrun.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrollrun.service")
	}
	return &service{
		db:          deps.DB,
		repo:        deps.Repo,
		sources:     deps.Sources,
		exceptions:  deps.Exceptions,
		adjustments: deps.Adjustments,
		outbox:      deps.Outbox,
		policy:      deps.Policy,
		detector:    payrollexception.NewDetector(deps.Policy.PenaltyThreshold, deps.Policy.SalarySpikeThreshold),
		metrics:     deps.Metrics,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreatePayrollRunRequest) (PayrollRunResponse, error) {
	s.logger.Debug("create payroll run requested",
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("period_start", req.PeriodStart),
		zap.String("period_end", req.PeriodEnd),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PayrollRunResponse{}, apperror.ErrUnauthorized
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollRunResponse{}, apperror.ErrUnauthorized
	}
	start, end, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		s.logger.Warn("create payroll run validation failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create payroll run begin tx failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.LockCompanyPeriods(ctx, companyID); err != nil {
		s.logger.Error("create payroll run period lock failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}
	overlap, err := qtx.HasOverlappingPeriod(ctx, companyID, start, end, nil)
	if err != nil {
		s.logger.Error("create payroll run overlap check failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}
	if overlap {
		s.logger.Warn("create payroll run overlap detected",
			zap.String("company_id", companyID),
			zap.String("period_start", req.PeriodStart),
			zap.String("period_end", req.PeriodEnd),
		)
		return PayrollRunResponse{}, payrollrunerrors.ErrPeriodOverlap
	}

	now := time.Now()
	run := &PayrollRun{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      StatusPendingPeriodReview,
		CreatedBy:   actor,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := qtx.Create(ctx, run); err != nil {
		s.logger.Error("create payroll run persist failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create payroll run commit failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}
	s.logger.Info("create payroll run success",
		zap.String("run_id", run.ID.String()),
		zap.String("company_id", companyID),
	)

	return mapToResponse(*run), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PayrollRunResponse, error) {
	run, err := s.find(ctx, companyID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	return mapToResponse(*run), nil
}

func (s *service) List(ctx context.Context, companyID string, q ListPayrollRunsQuery) ([]PayrollRunResponse, int64, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(q.Status)))
	if status != "" && !status.Valid() {
		return nil, 0, payrollrunerrors.ErrInvalidStatusFilter
	}
	page, pageSize := normalizePage(q.Page, q.PageSize)

	runs, total, err := s.repo.List(ctx, companyID, status, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("list payroll runs failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, 0, err
	}
	return mapToListResponse(runs), total, nil
}

func (s *service) ListLines(ctx context.Context, companyID, id string) ([]LineItemResponse, error) {
	run, err := s.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.ListLines(ctx, run.ID.String(), run.DraftVersion)
	if err != nil {
		s.logger.Error("list payroll lines failed", zap.String("run_id", id), zap.Error(err))
		return nil, err
	}
	return mapLinesToResponse(lines), nil
}

func (s *service) History(ctx context.Context, companyID, id string) ([]TransitionHistoryResponse, error) {
	if _, err := s.find(ctx, companyID, id); err != nil {
		return nil, err
	}
	items, err := s.repo.ListTransitions(ctx, companyID, id)
	if err != nil {
		s.logger.Error("list payroll run history failed", zap.String("run_id", id), zap.Error(err))
		return nil, err
	}
	return mapTransitionsToResponse(items), nil
}

func (s *service) EditPeriod(ctx context.Context, companyID, actorID, role, id string, req EditPeriodRequest) (PayrollRunResponse, error) {
	s.logger.Debug("edit payroll period requested",
		zap.String("run_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
	)

	actor, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollRunResponse{}, apperror.ErrUnauthorized
	}
	start, end, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return PayrollRunResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("edit payroll period begin tx failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run, err := s.lock(ctx, qtx, companyID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}

	step, err := Next(*run, EventEditPeriod, role, "")
	if err != nil {
		s.rejected(EventEditPeriod, run, err)
		return PayrollRunResponse{}, err
	}
	if err := s.checkPeriod(ctx, qtx, companyID, run.ID.String(), start, end); err != nil {
		s.rejected(EventEditPeriod, run, err)
		return PayrollRunResponse{}, err
	}

	run.PeriodStart = start
	run.PeriodEnd = end
	Apply(run, step, actor, "", time.Now())
	if err := s.persistStep(ctx, tx, qtx, run, step, actor, role, ""); err != nil {
		return PayrollRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("edit payroll period commit failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}
	s.metrics.Transition(string(step.Event), "applied")
	s.logger.Info("edit payroll period success",
		zap.String("run_id", id),
		zap.String("period_start", req.PeriodStart),
		zap.String("period_end", req.PeriodEnd),
	)

	return mapToResponse(*run), nil
}

func (s *service) Transition(ctx context.Context, companyID, actorID, role, id string, req TransitionRequest) (TransitionResponse, error) {
	event, err := ParseEvent(req.Event)
	if err != nil {
		return TransitionResponse{}, err
	}
	switch event {
	case EventGenerateDraft, EventRegenerateDraft:
		draft, applied, err := s.generateDraft(ctx, companyID, actorID, role, id, event)
		if err != nil {
			return TransitionResponse{}, err
		}
		return TransitionResponse{Run: draft.Run, AlreadyApplied: applied}, nil
	case EventEditPeriod:
		return TransitionResponse{}, payrollrunerrors.ErrUsePeriodEndpoint
	}

	s.logger.Debug("payroll run transition requested",
		zap.String("run_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("event", string(event)),
	)

	actor, err := uuid.Parse(actorID)
	if err != nil {
		return TransitionResponse{}, apperror.ErrUnauthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("payroll run transition begin tx failed", zap.Error(err))
		return TransitionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run, err := s.lock(ctx, qtx, companyID, id)
	if err != nil {
		return TransitionResponse{}, err
	}

	step, err := Next(*run, event, role, req.Reason)
	if err != nil {
		s.rejected(event, run, err)
		return TransitionResponse{}, err
	}
	if step.AlreadyApplied {
		s.metrics.Transition(string(event), "already_applied")
		s.logger.Info("payroll run transition already applied",
			zap.String("run_id", id),
			zap.String("event", string(event)),
			zap.String("status", string(run.Status)),
		)
		return TransitionResponse{Run: mapToResponse(*run), AlreadyApplied: true}, nil
	}

	switch event {
	case EventApprovePeriod:
		err = s.checkPeriod(ctx, qtx, companyID, id, run.PeriodStart, run.PeriodEnd)
	case EventPublish:
		err = s.checkPublish(ctx, tx, qtx, run)
	}
	if err != nil {
		s.rejected(event, run, err)
		return TransitionResponse{}, err
	}

	Apply(run, step, actor, req.Reason, time.Now())

	if event == EventFreeze {
		lines, err := qtx.ListLines(ctx, id, run.DraftVersion)
		if err != nil {
			s.logger.Error("freeze payroll run lines lookup failed", zap.Error(err))
			return TransitionResponse{}, err
		}
		SumLines(lines, run.DraftVersion).ApplyTo(run)
	}

	if err := s.persistStep(ctx, tx, qtx, run, step, actor, role, req.Reason); err != nil {
		return TransitionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("payroll run transition commit failed", zap.Error(err))
		return TransitionResponse{}, err
	}
	s.metrics.Transition(string(event), "applied")
	s.logger.Info("payroll run transition success",
		zap.String("run_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("event", string(event)),
		zap.String("from", string(step.From)),
		zap.String("to", string(step.To)),
	)

	return TransitionResponse{Run: mapToResponse(*run)}, nil
}

func (s *service) GenerateDraft(ctx context.Context, companyID, actorID, role, id string) (DraftResponse, error) {
	run, err := s.find(ctx, companyID, id)
	if err != nil {
		return DraftResponse{}, err
	}
	event := EventGenerateDraft
	if run.Status == StatusUnderReview {
		event = EventRegenerateDraft
	}
	resp, _, err := s.generateDraft(ctx, companyID, actorID, role, id, event)
	return resp, err
}

// generateDraft commits GENERATING_DRAFT, computes every line outside a transaction and then
// stores lines, exceptions and totals together. Structural failures restore the previous status.
func (s *service) generateDraft(ctx context.Context, companyID, actorID, role, id string, event Event) (DraftResponse, bool, error) {
	s.logger.Debug("payroll draft requested",
		zap.String("run_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("event", string(event)),
	)

	actor, err := uuid.Parse(actorID)
	if err != nil {
		return DraftResponse{}, false, apperror.ErrUnauthorized
	}

	run, step, err := s.beginDraft(ctx, companyID, id, role, event)
	if err != nil {
		return DraftResponse{}, false, err
	}
	if step.AlreadyApplied {
		s.metrics.Transition(string(event), "already_applied")
		return DraftResponse{Run: mapToResponse(*run), LineCount: run.EmployeeCount, ExceptionsOpen: run.ExceptionCount}, true, nil
	}

	resp, err := s.completeDraft(ctx, companyID, run, step, actor, role)
	if err != nil {
		s.metrics.Transition(string(event), "failed")
		s.logger.Warn("payroll draft generation failed",
			zap.String("run_id", id),
			zap.String("event", string(event)),
			zap.Error(err),
		)
		if rerr := s.revertDraft(ctx, companyID, id); rerr != nil {
			s.logger.Error("payroll draft revert failed", zap.String("run_id", id), zap.Error(rerr))
		}
		return DraftResponse{}, false, err
	}

	s.metrics.Transition(string(event), "applied")
	s.logger.Info("payroll draft generated",
		zap.String("run_id", id),
		zap.String("company_id", companyID),
		zap.Int("draft_version", resp.Run.DraftVersion),
		zap.Int("lines", resp.LineCount),
		zap.Int("exceptions_open", resp.ExceptionsOpen),
	)
	return resp, false, nil
}

func (s *service) beginDraft(ctx context.Context, companyID, id, role string, event Event) (*PayrollRun, Step, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("payroll draft begin tx failed", zap.Error(err))
		return nil, Step{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run, err := s.lock(ctx, qtx, companyID, id)
	if err != nil {
		return nil, Step{}, err
	}

	step, err := Next(*run, event, role, "")
	if err != nil {
		s.rejected(event, run, err)
		return nil, Step{}, err
	}
	if step.AlreadyApplied {
		return run, step, nil
	}

	now := time.Now()
	if step.From == StatusGeneratingDraft {
		if now.Sub(run.UpdatedAt) < s.draftStaleAfter() {
			s.rejected(event, run, payrollrunerrors.ErrDraftInProgress)
			return nil, Step{}, payrollrunerrors.ErrDraftInProgress
		}
		s.logger.Warn("payroll draft taking over stale generation",
			zap.String("run_id", id),
			zap.Time("started_at", run.UpdatedAt),
		)
	} else {
		previous := step.From
		run.DraftPreviousStatus = &previous
	}

	expected := run.Version
	run.Status = StatusGeneratingDraft
	run.Version++
	run.UpdatedAt = now
	if err := qtx.UpdateVersioned(ctx, run, expected); err != nil {
		s.logger.Warn("payroll draft status update failed", zap.String("run_id", id), zap.Error(err))
		return nil, Step{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("payroll draft commit failed", zap.Error(err))
		return nil, Step{}, err
	}
	return run, step, nil
}

func (s *service) completeDraft(ctx context.Context, companyID string, snapshot *PayrollRun, step Step, actor uuid.UUID, role string) (DraftResponse, error) {
	runID := snapshot.ID.String()

	in, err := loadDraftInputs(ctx, s.sources, companyID, *snapshot, s.policy.WorkingDaysDefault)
	if err != nil {
		return DraftResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DraftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	etx := s.exceptions.WithTx(tx)

	run, err := s.lock(ctx, qtx, companyID, runID)
	if err != nil {
		return DraftResponse{}, err
	}
	if run.Status != StatusGeneratingDraft || run.Version != snapshot.Version {
		return DraftResponse{}, payrollrunerrors.ErrConcurrentUpdate
	}

	existing, err := qtx.ListAllLines(ctx, runID)
	if err != nil {
		return DraftResponse{}, err
	}

	now := time.Now()
	draftVersion := run.DraftVersion + 1
	lines, snapshots, err := buildLines(*run, draftVersion, in, existing, now)
	if err != nil {
		return DraftResponse{}, err
	}
	if err := qtx.UpsertLines(ctx, lines); err != nil {
		return DraftResponse{}, err
	}

	findings, err := s.detector.Scan(snapshots)
	if err != nil {
		return DraftResponse{}, err
	}
	stored, err := etx.ListByRun(ctx, companyID, runID, payrollexception.ListFilter{})
	if err != nil {
		return DraftResponse{}, err
	}
	plan, err := payrollexception.Reconcile(run.CompanyID, run.ID, stored, findings, draftVersion, now)
	if err != nil {
		return DraftResponse{}, err
	}
	if err := payrollexception.ApplyPlan(ctx, etx, plan); err != nil {
		return DraftResponse{}, err
	}
	open, err := etx.CountUnresolved(ctx, runID, payrollexception.SeverityLow.AtLeast())
	if err != nil {
		return DraftResponse{}, err
	}

	flagged := 0
	for _, l := range lines {
		if l.IsFlagged {
			flagged++
		}
	}

	run.DraftVersion = draftVersion
	run.DraftPreviousStatus = nil
	run.ExceptionCount = int(open)
	SumLines(lines, draftVersion).ApplyTo(run)
	Apply(run, step, actor, "", now)
	if err := s.persistStep(ctx, tx, qtx, run, step, actor, role, ""); err != nil {
		return DraftResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return DraftResponse{}, err
	}
	for _, e := range plan.Create {
		s.metrics.ExceptionRaised(string(e.Type), string(e.Severity))
	}

	return DraftResponse{
		Run:            mapToResponse(*run),
		LineCount:      len(lines),
		FlaggedCount:   flagged,
		ExceptionsOpen: int(open),
	}, nil
}

func (s *service) draftStaleAfter() time.Duration {
	if s.policy.DraftStaleAfter > 0 {
		return s.policy.DraftStaleAfter
	}
	return 10 * time.Minute
}

// revertDraft restores the status a generation started from. Without a recorded status the run
// stays in GENERATING_DRAFT until a later request takes it over.
func (s *service) revertDraft(ctx context.Context, companyID, id string) error {
	ctx = context.WithoutCancel(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	run, err := qtx.FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		return err
	}
	if run.Status != StatusGeneratingDraft || run.DraftPreviousStatus == nil {
		return nil
	}

	expected := run.Version
	run.Status = *run.DraftPreviousStatus
	run.DraftPreviousStatus = nil
	run.Version++
	run.UpdatedAt = time.Now()
	if err := qtx.UpdateVersioned(ctx, run, expected); err != nil {
		return err
	}
	return tx.Commit()
}

// persistStep writes the run with a version check, its history row and the outbound events.
func (s *service) persistStep(ctx context.Context, tx *sql.Tx, qtx Repository, run *PayrollRun, step Step, actor uuid.UUID, role, reason string) error {
	now := time.Now()
	expected := run.Version
	run.Version++
	run.UpdatedAt = now
	if err := qtx.UpdateVersioned(ctx, run, expected); err != nil {
		if errors.Is(err, apperror.ErrConcurrencyConflict) {
			s.metrics.Transition(string(step.Event), "conflict")
			s.logger.Warn("payroll run version conflict",
				zap.String("run_id", run.ID.String()),
				zap.Int("expected_version", expected),
			)
		} else {
			s.logger.Error("payroll run persist failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		}
		return err
	}

	var note *string
	if r := strings.TrimSpace(reason); r != "" {
		note = &r
	}
	if err := qtx.CreateTransition(ctx, &Transition{
		ID:         uuid.New(),
		CompanyID:  run.CompanyID,
		RunID:      run.ID,
		Event:      step.Event,
		FromStatus: step.From,
		ToStatus:   step.To,
		ActorID:    actor,
		ActorRole:  role,
		Reason:     note,
		Rejection:  step.Rejection,
		CreatedAt:  now,
	}); err != nil {
		s.logger.Error("payroll run history persist failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		return err
	}

	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	outboxRepo := s.outbox.WithTx(tx)
	statusEvent, err := kafka.NewOutboxEvent(rid, "payroll_run", run.ID.String(), "payroll_run_status_changed",
		events.PayrollRunStatusChangedTopic,
		events.PayrollRunStatusChangedEvent{
			EventType:  "payroll_run_status_changed",
			RequestID:  rid,
			RunID:      run.ID.String(),
			CompanyID:  run.CompanyID.String(),
			Event:      string(step.Event),
			FromStatus: string(step.From),
			ToStatus:   string(step.To),
			ActorID:    actor.String(),
			ActorRole:  role,
			Reason:     strings.TrimSpace(reason),
			Rejected:   step.Rejection,
			OccurredAt: now.UTC(),
		})
	if err != nil {
		return err
	}
	if err := outboxRepo.Create(ctx, statusEvent); err != nil {
		s.logger.Error("payroll run outbox persist failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		return err
	}

	if step.Event != EventFreeze {
		return nil
	}
	payslipEvent, err := kafka.NewOutboxEvent(rid, "payroll_run", run.ID.String(), "payroll_payslip_requested",
		events.PayrollPayslipRequestedTopic,
		events.PayrollPayslipRequestedEvent{
			EventType:   "payroll_payslip_requested",
			RequestID:   rid,
			RunID:       run.ID.String(),
			CompanyID:   run.CompanyID.String(),
			RequestedBy: actor.String(),
			OccurredAt:  now.UTC(),
		})
	if err != nil {
		return err
	}
	if err := outboxRepo.Create(ctx, payslipEvent); err != nil {
		s.logger.Error("payslip request outbox persist failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (s *service) checkPeriod(ctx context.Context, qtx Repository, companyID, runID string, start, end time.Time) error {
	if !start.Before(end) {
		return payrollrunerrors.ErrInvalidPeriod
	}
	if err := qtx.LockCompanyPeriods(ctx, companyID); err != nil {
		return err
	}
	overlap, err := qtx.HasOverlappingPeriod(ctx, companyID, start, end, &runID)
	if err != nil {
		return err
	}
	if overlap {
		return apperror.GuardNotMet("period %s to %s overlaps another payroll run", start.Format(dateLayout), end.Format(dateLayout))
	}
	return nil
}

func (s *service) checkPublish(ctx context.Context, tx *sql.Tx, qtx Repository, run *PayrollRun) error {
	runID := run.ID.String()

	items, err := s.sources.PreRunItems.ListForPeriod(ctx, run.CompanyID.String(), payrollsource.Period{Start: run.PeriodStart, End: run.PeriodEnd})
	if err != nil {
		return err
	}
	pending := 0
	for _, item := range items {
		if item.Pending() {
			pending++
		}
	}
	if pending > 0 {
		return apperror.GuardNotMet("%d pre-run items pending approval", pending)
	}

	blocking, err := s.exceptions.WithTx(tx).CountUnresolved(ctx, runID, payrollexception.Severity(s.policy.BlockingSeverity).AtLeast())
	if err != nil {
		return err
	}
	if blocking > 0 {
		return apperror.GuardNotMet("%d blocking exceptions unresolved", blocking)
	}

	if s.adjustments != nil {
		pendingAdj, err := s.adjustments.CountPendingByRun(ctx, tx, runID)
		if err != nil {
			return err
		}
		if pendingAdj > 0 {
			return apperror.GuardNotMet("%d adjustments pending approval", pendingAdj)
		}
	}

	lines, err := qtx.ListLines(ctx, runID, run.DraftVersion)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return apperror.GuardNotMet("draft has no line items")
	}
	return nil
}

func (s *service) rejected(event Event, run *PayrollRun, err error) {
	if errors.Is(err, apperror.ErrGuardNotMet) {
		s.metrics.GuardFailure(string(event))
	}
	s.metrics.Transition(string(event), "rejected")
	s.logger.Warn("payroll run event rejected",
		zap.String("run_id", run.ID.String()),
		zap.String("event", string(event)),
		zap.String("status", string(run.Status)),
		zap.Error(err),
	)
}

func (s *service) find(ctx context.Context, companyID, id string) (*PayrollRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollrunerrors.ErrInvalidRunID
	}
	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollrunerrors.ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *service) lock(ctx context.Context, qtx Repository, companyID, id string) (*PayrollRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollrunerrors.ErrInvalidRunID
	}
	run, err := qtx.FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollrunerrors.ErrRunNotFound
		}
		s.logger.Error("payroll run lock failed", zap.String("run_id", id), zap.Error(err))
		return nil, err
	}
	return run, nil
}

func parsePeriod(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := parseDate(rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, payrollrunerrors.ErrInvalidDate
	}
	end, err := parseDate(rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, payrollrunerrors.ErrInvalidDate
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, payrollrunerrors.ErrInvalidPeriod
	}
	return start, end, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
