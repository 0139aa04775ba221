package payslip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-payroll/internal/config"
	"go-payroll/internal/domain"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrollexception"
	"go-payroll/internal/payrollrun"
	payrollrunerrors "go-payroll/internal/payrollrun/errors"
	paysliperrors "go-payroll/internal/payslip/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const skipReasonCritical = "unresolved critical exception"

// Viewer is the caller reading a payslip. Employees only reach their own.
type Viewer struct {
	EmployeeID string
	Role       string
}

func (v Viewer) canSee(p Payslip) bool {
	return v.Role != domain.RoleEmployee || p.EmployeeID.String() == v.EmployeeID
}

type Deps struct {
	DB         *sql.DB
	Repo       Repository
	Runs       payrollrun.Repository
	Exceptions payrollexception.Repository
	Counter    counter.Repository
	Outbox     kafka.OutboxRepository
	Policy     config.PayrollPolicy
	Metrics    *metrics.Payroll
}

type Service interface {
	Generate(ctx context.Context, companyID, actorID, runID string) (GenerateResponse, error)
	ListByRun(ctx context.Context, companyID, runID string) ([]PayslipResponse, error)
	ListByEmployee(ctx context.Context, companyID string, viewer Viewer, employeeID string) ([]PayslipResponse, error)
	GetByID(ctx context.Context, companyID string, viewer Viewer, id string) (PayslipResponse, error)
	Send(ctx context.Context, companyID, actorID, runID string, req SendPayslipsRequest) ([]PayslipResponse, error)
	MarkViewed(ctx context.Context, companyID string, viewer Viewer, id string) (PayslipResponse, error)
	Download(ctx context.Context, companyID string, viewer Viewer, id string) (Document, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	runs       payrollrun.Repository
	exceptions payrollexception.Repository
	counter    counter.Repository
	outbox     kafka.OutboxRepository
	policy     config.PayrollPolicy
	metrics    *metrics.Payroll
	inflight   singleflight.Group
	logger     *zap.Logger
}

func NewService(deps Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("payslip.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payslip.service")
	}
	return &service{
		db:         deps.DB,
		repo:       deps.Repo,
		runs:       deps.Runs,
		exceptions: deps.Exceptions,
		counter:    deps.Counter,
		outbox:     deps.Outbox,
		policy:     deps.Policy,
		metrics:    deps.Metrics,
		logger:     l,
	}
}

// Generate issues payslips for every eligible line of a frozen run. Concurrent calls for one
// run share a single pass; the run row lock serializes callers in other processes.
func (s *service) Generate(ctx context.Context, companyID, actorID, runID string) (GenerateResponse, error) {
	s.logger.Debug("generate payslips requested",
		zap.String("run_id", runID),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
	)

	actor, err := uuid.Parse(actorID)
	if err != nil {
		return GenerateResponse{}, apperror.ErrUnauthorized
	}
	if _, err := uuid.Parse(runID); err != nil {
		return GenerateResponse{}, payrollrunerrors.ErrInvalidRunID
	}

	v, err, shared := s.inflight.Do(companyID+":"+runID, func() (any, error) {
		return s.generate(ctx, companyID, actor, runID)
	})
	if err != nil {
		return GenerateResponse{}, err
	}
	if shared {
		s.logger.Debug("generate payslips joined in-flight call", zap.String("run_id", runID))
	}
	return v.(GenerateResponse), nil
}

func (s *service) generate(ctx context.Context, companyID string, actor uuid.UUID, runID string) (GenerateResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("generate payslips begin tx failed", zap.Error(err))
		return GenerateResponse{}, err
	}
	defer tx.Rollback()

	rtx := s.runs.WithTx(tx)
	run, err := rtx.FindByIDForUpdate(ctx, companyID, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GenerateResponse{}, payrollrunerrors.ErrRunNotFound
		}
		s.logger.Error("generate payslips run lookup failed", zap.String("run_id", runID), zap.Error(err))
		return GenerateResponse{}, err
	}
	if !run.Status.Finalized() {
		s.logger.Warn("generate payslips run not ready",
			zap.String("run_id", runID),
			zap.String("status", string(run.Status)),
		)
		return GenerateResponse{}, paysliperrors.ErrRunNotReady.WithDetails(map[string]string{"status": string(run.Status)})
	}

	lines, err := rtx.ListLines(ctx, runID, run.DraftVersion)
	if err != nil {
		return GenerateResponse{}, err
	}
	blockedIDs, err := s.exceptions.WithTx(tx).UnresolvedLineItemIDs(ctx, runID, []payrollexception.Severity{payrollexception.SeverityCritical})
	if err != nil {
		return GenerateResponse{}, err
	}
	blocked := make(map[string]bool, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = true
	}

	ptx := s.repo.WithTx(tx)
	issued, err := ptx.ListByRun(ctx, companyID, runID)
	if err != nil {
		return GenerateResponse{}, err
	}
	byEmployee := make(map[uuid.UUID]Payslip, len(issued))
	for _, p := range issued {
		byEmployee[p.EmployeeID] = p
	}

	resp := GenerateResponse{
		RunID:     runID,
		Generated: []PayslipResponse{},
		Existing:  []PayslipResponse{},
		Skipped:   []SkippedLineResponse{},
	}
	now := time.Now()
	ctr := s.counter.WithTx(tx)
	for _, line := range lines {
		if p, ok := byEmployee[line.EmployeeID]; ok {
			resp.Existing = append(resp.Existing, mapToResponse(p))
			continue
		}
		if blocked[line.ID.String()] {
			resp.Skipped = append(resp.Skipped, SkippedLineResponse{
				LineItemID: line.ID.String(),
				EmployeeID: line.EmployeeID.String(),
				Reason:     skipReasonCritical,
			})
			continue
		}

		seq, err := ctr.GetNextValue(ctx, companyID, counter.TypePayslip)
		if err != nil {
			s.logger.Error("generate payslips counter failed", zap.String("run_id", runID), zap.Error(err))
			return GenerateResponse{}, err
		}
		number, err := counter.FormatNumber(s.policy.PayslipNumberTemplate, run.PeriodEnd, seq)
		if err != nil {
			return GenerateResponse{}, apperror.Wrap(err, apperror.CodeConfiguration, "payslip number template is invalid", http.StatusInternalServerError)
		}

		p := fromLine(*run, line, number, s.policy.Currency, actor, now)
		inserted, err := ptx.CreateIfAbsent(ctx, &p)
		if err != nil {
			s.logger.Error("generate payslips insert failed",
				zap.String("run_id", runID),
				zap.String("employee_id", line.EmployeeID.String()),
				zap.Error(err),
			)
			return GenerateResponse{}, err
		}
		if !inserted {
			existing, err := ptx.FindByRunAndEmployee(ctx, runID, line.EmployeeID.String())
			if err != nil {
				return GenerateResponse{}, err
			}
			resp.Existing = append(resp.Existing, mapToResponse(*existing))
			continue
		}
		resp.Generated = append(resp.Generated, mapToResponse(p))
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("generate payslips commit failed", zap.Error(err))
		return GenerateResponse{}, err
	}
	s.metrics.Payslips("generated", len(resp.Generated))
	s.metrics.Payslips("existing", len(resp.Existing))
	s.metrics.Payslips("skipped", len(resp.Skipped))
	s.logger.Info("generate payslips success",
		zap.String("run_id", runID),
		zap.String("company_id", companyID),
		zap.Int("generated", len(resp.Generated)),
		zap.Int("existing", len(resp.Existing)),
		zap.Int("skipped", len(resp.Skipped)),
	)

	return resp, nil
}

func (s *service) ListByRun(ctx context.Context, companyID, runID string) ([]PayslipResponse, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, payrollrunerrors.ErrInvalidRunID
	}
	items, err := s.repo.ListByRun(ctx, companyID, runID)
	if err != nil {
		s.logger.Error("list payslips by run failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(items), nil
}

func (s *service) ListByEmployee(ctx context.Context, companyID string, viewer Viewer, employeeID string) ([]PayslipResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, paysliperrors.ErrInvalidEmployeeID
	}
	if viewer.Role == domain.RoleEmployee && viewer.EmployeeID != employeeID {
		return nil, paysliperrors.ErrNotOwner
	}
	items, err := s.repo.ListByEmployee(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("list payslips by employee failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(items), nil
}

func (s *service) GetByID(ctx context.Context, companyID string, viewer Viewer, id string) (PayslipResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PayslipResponse{}, paysliperrors.ErrInvalidPayslipID
	}
	p, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayslipResponse{}, paysliperrors.ErrPayslipNotFound
		}
		return PayslipResponse{}, err
	}
	if !viewer.canSee(*p) {
		return PayslipResponse{}, paysliperrors.ErrNotOwner
	}
	return mapToResponse(*p), nil
}

// Send moves generated payslips to SENT and queues one distribution event each.
// Payslips already sent are returned unchanged.
func (s *service) Send(ctx context.Context, companyID, actorID, runID string, req SendPayslipsRequest) ([]PayslipResponse, error) {
	s.logger.Debug("send payslips requested",
		zap.String("run_id", runID),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.Int("selected", len(req.PayslipIDs)),
	)

	actor, err := uuid.Parse(actorID)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if _, err := uuid.Parse(runID); err != nil {
		return nil, payrollrunerrors.ErrInvalidRunID
	}
	for _, id := range req.PayslipIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, paysliperrors.ErrInvalidPayslipID.WithDetails(map[string]string{"payslip_id": id})
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("send payslips begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	ptx := s.repo.WithTx(tx)
	var targets []Payslip
	if len(req.PayslipIDs) == 0 {
		targets, err = ptx.ListByRunForUpdate(ctx, companyID, runID, StatusGenerated)
		if err != nil {
			return nil, err
		}
	} else {
		for _, id := range req.PayslipIDs {
			p, err := ptx.FindByIDForUpdate(ctx, companyID, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, paysliperrors.ErrPayslipNotFound.WithDetails(map[string]string{"payslip_id": id})
				}
				return nil, err
			}
			if p.RunID.String() != runID {
				return nil, paysliperrors.ErrPayslipNotFound.WithDetails(map[string]string{"payslip_id": id})
			}
			targets = append(targets, *p)
		}
	}

	now := time.Now()
	rid := contextutil.GetRequestID(ctx)
	otx := s.outbox.WithTx(tx)
	sent := 0
	for i := range targets {
		p := &targets[i]
		if p.Sent() {
			continue
		}
		p.Status = p.Status.Advance(StatusSent)
		p.SentBy = &actor
		p.SentAt = &now
		p.UpdatedAt = now
		if err := ptx.Update(ctx, p); err != nil {
			s.logger.Error("send payslips update failed", zap.String("payslip_id", p.ID.String()), zap.Error(err))
			return nil, err
		}

		event, err := kafka.NewOutboxEvent(rid, "payslip", p.ID.String(), "payroll_payslip_distributed",
			events.PayrollPayslipDistributedTopic,
			events.PayrollPayslipDistributedEvent{
				EventType:     "payroll_payslip_distributed",
				RequestID:     rid,
				PayslipID:     p.ID.String(),
				PayslipNumber: p.PayslipNumber,
				RunID:         p.RunID.String(),
				CompanyID:     p.CompanyID.String(),
				EmployeeID:    p.EmployeeID.String(),
				SentBy:        actor.String(),
				OccurredAt:    now.UTC(),
			})
		if err != nil {
			return nil, err
		}
		if err := otx.Create(ctx, event); err != nil {
			s.logger.Error("send payslips outbox failed", zap.String("payslip_id", p.ID.String()), zap.Error(err))
			return nil, err
		}
		sent++
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("send payslips commit failed", zap.Error(err))
		return nil, err
	}
	s.metrics.Payslips("sent", sent)
	s.logger.Info("send payslips success",
		zap.String("run_id", runID),
		zap.String("actor_id", actorID),
		zap.Int("sent", sent),
	)

	return mapToListResponse(targets), nil
}

func (s *service) MarkViewed(ctx context.Context, companyID string, viewer Viewer, id string) (PayslipResponse, error) {
	p, err := s.advance(ctx, companyID, viewer, id, func(p *Payslip, now time.Time) {
		if p.ViewedAt == nil {
			p.ViewedAt = &now
		}
		p.Status = p.Status.Advance(StatusViewed)
	}, nil)
	if err != nil {
		return PayslipResponse{}, err
	}
	return mapToResponse(*p), nil
}

// Download renders the PDF inside the transaction that marks the payslip downloaded.
func (s *service) Download(ctx context.Context, companyID string, viewer Viewer, id string) (Document, error) {
	var content []byte
	p, err := s.advance(ctx, companyID, viewer, id, func(p *Payslip, now time.Time) {
		if p.DownloadedAt == nil {
			p.DownloadedAt = &now
		}
		p.Status = p.Status.Advance(StatusDownloaded)
	}, func(p *Payslip) error {
		var err error
		content, err = renderPDF(*p)
		return err
	})
	if err != nil {
		return Document{}, err
	}
	return Document{
		FileName:    fmt.Sprintf("payslip-%s.pdf", p.PayslipNumber),
		ContentType: pdfContentType,
		Content:     content,
	}, nil
}

func (s *service) advance(
	ctx context.Context,
	companyID string,
	viewer Viewer,
	id string,
	mark func(p *Payslip, now time.Time),
	before func(p *Payslip) error,
) (*Payslip, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, paysliperrors.ErrInvalidPayslipID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("payslip status begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	ptx := s.repo.WithTx(tx)
	p, err := ptx.FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, paysliperrors.ErrPayslipNotFound
		}
		return nil, err
	}
	if !viewer.canSee(*p) {
		return nil, paysliperrors.ErrNotOwner
	}
	if !p.Sent() {
		return nil, paysliperrors.ErrNotSent
	}

	now := time.Now()
	mark(p, now)
	p.UpdatedAt = now
	if before != nil {
		if err := before(p); err != nil {
			s.logger.Error("payslip render failed", zap.String("payslip_id", id), zap.Error(err))
			return nil, err
		}
	}
	if err := ptx.Update(ctx, p); err != nil {
		s.logger.Error("payslip status update failed", zap.String("payslip_id", id), zap.Error(err))
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("payslip status advanced",
		zap.String("payslip_id", id),
		zap.String("status", string(p.Status)),
	)
	return p, nil
}
