package payrolladjustment

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Adjustment) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Adjustment, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Adjustment, error)
	Update(ctx context.Context, a *Adjustment) error
	ListByRun(ctx context.Context, companyID, runID, lineItemID string) ([]Adjustment, error)
	CountByRunAndStatus(ctx context.Context, runID string, status Status) (int64, error)
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

func (r *repository) Create(ctx context.Context, a *Adjustment) error {
	return r.session(ctx).Create(a).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Adjustment, error) {
	var a Adjustment
	err := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Adjustment, error) {
	var a Adjustment
	err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) Update(ctx context.Context, a *Adjustment) error {
	return r.session(ctx).Save(a).Error
}

// ListByRun is chronological; lineItemID narrows to one line when set.
func (r *repository) ListByRun(ctx context.Context, companyID, runID, lineItemID string) ([]Adjustment, error) {
	q := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID)
	if lineItemID != "" {
		q = q.Where("line_item_id = ?", lineItemID)
	}

	var items []Adjustment
	err := q.Order("created_at ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *repository) CountByRunAndStatus(ctx context.Context, runID string, status Status) (int64, error) {
	var count int64
	err := r.session(ctx).
		Model(&Adjustment{}).
		Where("run_id = ? AND status = ?", runID, status).
		Count(&count).Error
	return count, err
}

// PendingCounter reports pending adjustments to the publish guard.
type PendingCounter struct {
	repo Repository
}

func NewPendingCounter(repo Repository) *PendingCounter {
	return &PendingCounter{repo: repo}
}

func (p *PendingCounter) CountPendingByRun(ctx context.Context, tx *sql.Tx, runID string) (int64, error) {
	return p.repo.WithTx(tx).CountByRunAndStatus(ctx, runID, StatusPending)
}
