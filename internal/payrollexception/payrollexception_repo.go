package payrollexception

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
	ListByRun(ctx context.Context, companyID, runID string, filter ListFilter) ([]Exception, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Exception, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Exception, error)
	CreateBatch(ctx context.Context, items []Exception) error
	Update(ctx context.Context, e *Exception) error
	CountUnresolved(ctx context.Context, runID string, severities []Severity) (int64, error)
	UnresolvedLineItemIDs(ctx context.Context, runID string, severities []Severity) ([]string, error)
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

func (r *repository) ListByRun(ctx context.Context, companyID, runID string, filter ListFilter) ([]Exception, error) {
	var items []Exception
	q := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	err := q.Order("created_at ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Exception, error) {
	var e Exception
	err := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Exception, error) {
	var e Exception
	err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) CreateBatch(ctx context.Context, items []Exception) error {
	if len(items) == 0 {
		return nil
	}
	return r.session(ctx).Create(&items).Error
}

func (r *repository) Update(ctx context.Context, e *Exception) error {
	return r.session(ctx).Save(e).Error
}

func (r *repository) CountUnresolved(ctx context.Context, runID string, severities []Severity) (int64, error) {
	var count int64
	err := r.session(ctx).
		Model(&Exception{}).
		Where("run_id = ?", runID).
		Where("status IN ?", unresolvedStatuses).
		Where("severity IN ?", severities).
		Count(&count).Error
	return count, err
}

func (r *repository) UnresolvedLineItemIDs(ctx context.Context, runID string, severities []Severity) ([]string, error) {
	var ids []string
	err := r.session(ctx).
		Model(&Exception{}).
		Distinct().
		Where("run_id = ?", runID).
		Where("status IN ?", unresolvedStatuses).
		Where("severity IN ?", severities).
		Pluck("line_item_id", &ids).Error
	return ids, err
}

// ApplyPlan persists a reconcile plan on repo, which is normally bound to the draft transaction.
func ApplyPlan(ctx context.Context, repo Repository, plan ReconcilePlan) error {
	if err := repo.CreateBatch(ctx, plan.Create); err != nil {
		return err
	}
	for i := range plan.Refresh {
		if err := repo.Update(ctx, &plan.Refresh[i]); err != nil {
			return err
		}
	}
	for i := range plan.Supersede {
		if err := repo.Update(ctx, &plan.Supersede[i]); err != nil {
			return err
		}
	}
	return nil
}
