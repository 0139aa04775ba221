package payrollexception

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	payrollexceptionerrors "go-payroll/internal/payrollexception/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunGuard confirms, inside tx, that the run still accepts review work.
type RunGuard interface {
	EnsureEditable(ctx context.Context, tx *sql.Tx, companyID, runID string) error
}

type Service interface {
	ListByRun(ctx context.Context, companyID, runID string, q ListExceptionsQuery) ([]ExceptionResponse, error)
	GetByID(ctx context.Context, companyID, id string) (ExceptionResponse, error)
	Start(ctx context.Context, companyID, actorID, id string) (ExceptionResponse, error)
	Resolve(ctx context.Context, companyID, actorID, id string, req ResolveExceptionRequest) (ExceptionResponse, error)
	Ignore(ctx context.Context, companyID, actorID, id string, req ResolveExceptionRequest) (ExceptionResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	guard  RunGuard
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, guard RunGuard, logger ...*zap.Logger) Service {
	l := zap.L().Named("payrollexception.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrollexception.service")
	}
	return &service{db: db, repo: repo, guard: guard, logger: l}
}

func (s *service) ListByRun(ctx context.Context, companyID, runID string, q ListExceptionsQuery) ([]ExceptionResponse, error) {
	filter := ListFilter{
		Status:   Status(strings.ToUpper(strings.TrimSpace(q.Status))),
		Severity: Severity(strings.ToUpper(strings.TrimSpace(q.Severity))),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, payrollexceptionerrors.ErrInvalidStatusFilter
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		return nil, payrollexceptionerrors.ErrInvalidSeverityFilter
	}

	items, err := s.repo.ListByRun(ctx, companyID, runID, filter)
	if err != nil {
		s.logger.Error("list exceptions failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(items), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (ExceptionResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ExceptionResponse{}, payrollexceptionerrors.ErrInvalidExceptionID
	}
	e, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExceptionResponse{}, payrollexceptionerrors.ErrExceptionNotFound
		}
		return ExceptionResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) Start(ctx context.Context, companyID, actorID, id string) (ExceptionResponse, error) {
	return s.mutate(ctx, "start", companyID, actorID, id, func(e *Exception, actor uuid.UUID, now time.Time) error {
		if e.Status.Terminal() {
			return payrollexceptionerrors.ErrAlreadyResolved
		}
		if e.Status != StatusOpen {
			return payrollexceptionerrors.ErrNotOpen
		}
		e.Status = StatusInProgress
		return nil
	})
}

func (s *service) Resolve(ctx context.Context, companyID, actorID, id string, req ResolveExceptionRequest) (ExceptionResponse, error) {
	return s.close(ctx, "resolve", StatusResolved, companyID, actorID, id, req.Notes)
}

func (s *service) Ignore(ctx context.Context, companyID, actorID, id string, req ResolveExceptionRequest) (ExceptionResponse, error) {
	return s.close(ctx, "ignore", StatusIgnored, companyID, actorID, id, req.Notes)
}

func (s *service) close(ctx context.Context, op string, target Status, companyID, actorID, id, notes string) (ExceptionResponse, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return ExceptionResponse{}, payrollexceptionerrors.ErrNotesRequired
	}
	return s.mutate(ctx, op, companyID, actorID, id, func(e *Exception, actor uuid.UUID, now time.Time) error {
		if e.Status.Terminal() {
			return payrollexceptionerrors.ErrAlreadyResolved
		}
		e.Status = target
		e.ResolvedBy = &actor
		e.ResolvedAt = &now
		e.ResolutionNotes = &notes
		return nil
	})
}

func (s *service) mutate(
	ctx context.Context,
	op, companyID, actorID, id string,
	apply func(e *Exception, actor uuid.UUID, now time.Time) error,
) (ExceptionResponse, error) {
	s.logger.Debug("exception "+op+" requested",
		zap.String("exception_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return ExceptionResponse{}, payrollexceptionerrors.ErrInvalidExceptionID
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return ExceptionResponse{}, apperror.ErrUnauthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("exception "+op+" begin tx failed", zap.Error(err))
		return ExceptionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExceptionResponse{}, payrollexceptionerrors.ErrExceptionNotFound
		}
		s.logger.Error("exception "+op+" lookup failed", zap.Error(err))
		return ExceptionResponse{}, err
	}

	if err := s.guard.EnsureEditable(ctx, tx, companyID, e.RunID.String()); err != nil {
		s.logger.Warn("exception "+op+" rejected by run state",
			zap.String("run_id", e.RunID.String()),
			zap.Error(err),
		)
		return ExceptionResponse{}, err
	}

	now := time.Now()
	if err := apply(e, actor, now); err != nil {
		s.logger.Warn("exception "+op+" not allowed",
			zap.String("exception_id", id),
			zap.String("status", string(e.Status)),
			zap.Error(err),
		)
		return ExceptionResponse{}, err
	}
	e.UpdatedAt = now

	if err := qtx.Update(ctx, e); err != nil {
		s.logger.Error("exception "+op+" persist failed", zap.Error(err))
		return ExceptionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("exception "+op+" commit failed", zap.Error(err))
		return ExceptionResponse{}, err
	}
	s.logger.Info("exception "+op+" success",
		zap.String("exception_id", id),
		zap.String("run_id", e.RunID.String()),
		zap.String("status", string(e.Status)),
	)

	return mapToResponse(*e), nil
}
