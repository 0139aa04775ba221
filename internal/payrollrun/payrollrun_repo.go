package payrollrun

import (
	"context"
	"database/sql"
	"time"

	payrollrunerrors "go-payroll/internal/payrollrun/errors"
	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, run *PayrollRun) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayrollRun, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*PayrollRun, error)
	List(ctx context.Context, companyID string, status Status, offset, limit int) ([]PayrollRun, int64, error)
	UpdateVersioned(ctx context.Context, run *PayrollRun, expectedVersion int) error
	LockCompanyPeriods(ctx context.Context, companyID string) error
	HasOverlappingPeriod(ctx context.Context, companyID string, start, end time.Time, excludeID *string) (bool, error)
	CreateTransition(ctx context.Context, t *Transition) error
	ListTransitions(ctx context.Context, companyID, runID string) ([]Transition, error)
	ListLines(ctx context.Context, runID string, draftVersion int) ([]LineItem, error)
	ListAllLines(ctx context.Context, runID string) ([]LineItem, error)
	FindLine(ctx context.Context, companyID, lineID string) (*LineItem, error)
	FindLineForUpdate(ctx context.Context, companyID, lineID string) (*LineItem, error)
	UpsertLines(ctx context.Context, lines []LineItem) error
	UpdateLineVersioned(ctx context.Context, line *LineItem, expectedVersion int) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) session(ctx context.Context) *gorm.DB {
	return connection.BindTx(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, run *PayrollRun) error {
	return r.session(ctx).Create(run).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&run, "id = ?", id).Error
	return &run, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&run, "id = ?", id).Error
	return &run, err
}

func (r *repository) List(ctx context.Context, companyID string, status Status, offset, limit int) ([]PayrollRun, int64, error) {
	filtered := func() *gorm.DB {
		q := r.session(ctx).Model(&PayrollRun{}).Scopes(tenant.Scope(companyID))
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []PayrollRun
	err := filtered().Order("period_start DESC").Offset(offset).Limit(limit).Find(&runs).Error
	return runs, total, err
}

// UpdateVersioned writes every column of run when the stored version still equals expectedVersion.
func (r *repository) UpdateVersioned(ctx context.Context, run *PayrollRun, expectedVersion int) error {
	res := r.session(ctx).
		Model(&PayrollRun{}).
		Where("id = ? AND version = ?", run.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(run)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payrollrunerrors.ErrConcurrentUpdate
	}
	return nil
}

// LockCompanyPeriods serializes period checks of one company until the transaction ends.
func (r *repository) LockCompanyPeriods(ctx context.Context, companyID string) error {
	return r.session(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "payroll_run_period:"+companyID).Error
}

// HasOverlappingPeriod ignores runs that currently carry a rejection marker.
func (r *repository) HasOverlappingPeriod(ctx context.Context, companyID string, start, end time.Time, excludeID *string) (bool, error) {
	q := r.session(ctx).
		Model(&PayrollRun{}).
		Scopes(tenant.Scope(companyID)).
		Where("period_start <= ? AND period_end >= ?", end, start).
		Where(`NOT (status = ? AND rejected_at IS NOT NULL AND (unfrozen_at IS NULL OR rejected_at > unfrozen_at))`,
			StatusUnderReview)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateTransition(ctx context.Context, t *Transition) error {
	return r.session(ctx).Create(t).Error
}

func (r *repository) ListTransitions(ctx context.Context, companyID, runID string) ([]Transition, error) {
	var items []Transition
	err := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListLines(ctx context.Context, runID string, draftVersion int) ([]LineItem, error) {
	var lines []LineItem
	err := r.session(ctx).
		Where("run_id = ? AND draft_version = ?", runID, draftVersion).
		Order("employee_id ASC").
		Find(&lines).Error
	return lines, err
}

func (r *repository) ListAllLines(ctx context.Context, runID string) ([]LineItem, error) {
	var lines []LineItem
	err := r.session(ctx).
		Where("run_id = ?", runID).
		Order("employee_id ASC").
		Find(&lines).Error
	return lines, err
}

func (r *repository) FindLine(ctx context.Context, companyID, lineID string) (*LineItem, error) {
	var line LineItem
	err := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&line, "id = ?", lineID).Error
	return &line, err
}

func (r *repository) FindLineForUpdate(ctx context.Context, companyID, lineID string) (*LineItem, error) {
	var line LineItem
	err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&line, "id = ?", lineID).Error
	return &line, err
}

// UpsertLines recomputes lines in place, keyed by (run_id, employee_id).
func (r *repository) UpsertLines(ctx context.Context, lines []LineItem) error {
	if len(lines) == 0 {
		return nil
	}
	return r.session(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "employee_id"}},
			UpdateAll: true,
		}).
		CreateInBatches(&lines, 200).Error
}

func (r *repository) UpdateLineVersioned(ctx context.Context, line *LineItem, expectedVersion int) error {
	res := r.session(ctx).
		Model(&LineItem{}).
		Where("id = ? AND version = ?", line.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(line)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payrollrunerrors.ErrConcurrentUpdate
	}
	return nil
}
