package payrollrun

import (
	"context"
	"database/sql"
	"errors"

	payrollrunerrors "go-payroll/internal/payrollrun/errors"

	"gorm.io/gorm"
)

// RunGuard locks a run inside a caller's transaction and checks that review work is still allowed.
type RunGuard struct {
	repo Repository
}

func NewRunGuard(repo Repository) *RunGuard {
	return &RunGuard{repo: repo}
}

// LockEditable returns the locked run, or ErrRunNotEditable once it has been published.
func (g *RunGuard) LockEditable(ctx context.Context, tx *sql.Tx, companyID, runID string) (*PayrollRun, error) {
	run, err := g.repo.WithTx(tx).FindByIDForUpdate(ctx, companyID, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollrunerrors.ErrRunNotFound
		}
		return nil, err
	}
	if !run.Status.Editable() {
		return nil, payrollrunerrors.ErrRunNotEditable.WithDetails(map[string]string{"status": string(run.Status)})
	}
	return run, nil
}

func (g *RunGuard) EnsureEditable(ctx context.Context, tx *sql.Tx, companyID, runID string) error {
	_, err := g.LockEditable(ctx, tx, companyID, runID)
	return err
}
