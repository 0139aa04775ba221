package payslip

import (
	"context"
	"database/sql"
	"errors"

	paysliperrors "go-payroll/internal/payslip/errors"
	"go-payroll/internal/shared/connection"
	"go-payroll/internal/tenant"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateIfAbsent(ctx context.Context, p *Payslip) (bool, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Payslip, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Payslip, error)
	FindByRunAndEmployee(ctx context.Context, runID, employeeID string) (*Payslip, error)
	ListByRun(ctx context.Context, companyID, runID string) ([]Payslip, error)
	ListByRunForUpdate(ctx context.Context, companyID, runID string, status Status) ([]Payslip, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]Payslip, error)
	Update(ctx context.Context, p *Payslip) error
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

// CreateIfAbsent inserts p unless the employee already has a payslip for the run.
// It reports whether a row was written.
func (r *repository) CreateIfAbsent(ctx context.Context, p *Payslip) (bool, error) {
	res := r.session(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "employee_id"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, paysliperrors.ErrNumberTaken
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Payslip, error) {
	var p Payslip
	err := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Payslip, error) {
	var p Payslip
	err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindByRunAndEmployee(ctx context.Context, runID, employeeID string) (*Payslip, error) {
	var p Payslip
	err := r.session(ctx).
		First(&p, "run_id = ? AND employee_id = ?", runID, employeeID).Error
	return &p, err
}

// ListByRun is ordered by employee id then payslip number, the bank file order.
func (r *repository) ListByRun(ctx context.Context, companyID, runID string) ([]Payslip, error) {
	var items []Payslip
	err := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID).
		Order("employee_id ASC, payslip_number ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListByRunForUpdate(ctx context.Context, companyID, runID string, status Status) ([]Payslip, error) {
	var items []Payslip
	err := r.session(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ? AND status = ?", runID, status).
		Order("employee_id ASC, payslip_number ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]Payslip, error) {
	var items []Payslip
	err := r.session(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("period_start DESC, payslip_number DESC").
		Find(&items).Error
	return items, err
}

// Update only touches distribution columns; amounts stay as generated.
func (r *repository) Update(ctx context.Context, p *Payslip) error {
	return r.session(ctx).
		Model(&Payslip{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"status":        p.Status,
			"sent_by":       p.SentBy,
			"sent_at":       p.SentAt,
			"viewed_at":     p.ViewedAt,
			"downloaded_at": p.DownloadedAt,
			"updated_at":    p.UpdatedAt,
		}).Error
}
