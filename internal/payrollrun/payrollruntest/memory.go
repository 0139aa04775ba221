// Package payrollruntest provides an in-memory payrollrun.Repository for tests of the packages
// that read runs and lines.
package payrollruntest

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"go-payroll/internal/payrollrun"
	payrollrunerrors "go-payroll/internal/payrollrun/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository ignores transactions. Reads return copies and version checks mirror the gorm repository.
type Repository struct {
	Runs        map[uuid.UUID]payrollrun.PayrollRun
	Lines       map[uuid.UUID]payrollrun.LineItem
	Transitions []payrollrun.Transition
}

func NewRepository() *Repository {
	return &Repository{
		Runs:  map[uuid.UUID]payrollrun.PayrollRun{},
		Lines: map[uuid.UUID]payrollrun.LineItem{},
	}
}

func (m *Repository) WithTx(tx *sql.Tx) payrollrun.Repository { return m }

func (m *Repository) Create(ctx context.Context, run *payrollrun.PayrollRun) error {
	m.Runs[run.ID] = *run
	return nil
}

func (m *Repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payrollrun.PayrollRun, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	run, ok := m.Runs[key]
	if !ok || run.CompanyID.String() != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return &run, nil
}

func (m *Repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*payrollrun.PayrollRun, error) {
	return m.FindByIDAndCompany(ctx, companyID, id)
}

func (m *Repository) List(ctx context.Context, companyID string, status payrollrun.Status, offset, limit int) ([]payrollrun.PayrollRun, int64, error) {
	var out []payrollrun.PayrollRun
	for _, run := range m.Runs {
		if run.CompanyID.String() == companyID && (status == "" || run.Status == status) {
			out = append(out, run)
		}
	}
	return out, int64(len(out)), nil
}

func (m *Repository) UpdateVersioned(ctx context.Context, run *payrollrun.PayrollRun, expected int) error {
	stored, ok := m.Runs[run.ID]
	if !ok || stored.Version != expected {
		return payrollrunerrors.ErrConcurrentUpdate
	}
	m.Runs[run.ID] = *run
	return nil
}

func (m *Repository) LockCompanyPeriods(ctx context.Context, companyID string) error {
	return nil
}

func (m *Repository) HasOverlappingPeriod(ctx context.Context, companyID string, start, end time.Time, excludeID *string) (bool, error) {
	return false, nil
}

func (m *Repository) CreateTransition(ctx context.Context, t *payrollrun.Transition) error {
	m.Transitions = append(m.Transitions, *t)
	return nil
}

func (m *Repository) ListTransitions(ctx context.Context, companyID, runID string) ([]payrollrun.Transition, error) {
	return m.Transitions, nil
}

// ListLines is ordered by employee id like the gorm repository.
func (m *Repository) ListLines(ctx context.Context, runID string, draftVersion int) ([]payrollrun.LineItem, error) {
	var out []payrollrun.LineItem
	for _, l := range m.Lines {
		if l.RunID.String() == runID && l.DraftVersion == draftVersion {
			out = append(out, l)
		}
	}
	sortLines(out)
	return out, nil
}

func (m *Repository) ListAllLines(ctx context.Context, runID string) ([]payrollrun.LineItem, error) {
	var out []payrollrun.LineItem
	for _, l := range m.Lines {
		if l.RunID.String() == runID {
			out = append(out, l)
		}
	}
	sortLines(out)
	return out, nil
}

func sortLines(lines []payrollrun.LineItem) {
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].EmployeeID.String() < lines[j].EmployeeID.String()
	})
}

func (m *Repository) FindLine(ctx context.Context, companyID, lineID string) (*payrollrun.LineItem, error) {
	key, err := uuid.Parse(lineID)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	l, ok := m.Lines[key]
	if !ok || l.CompanyID.String() != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (m *Repository) FindLineForUpdate(ctx context.Context, companyID, lineID string) (*payrollrun.LineItem, error) {
	return m.FindLine(ctx, companyID, lineID)
}

func (m *Repository) UpsertLines(ctx context.Context, lines []payrollrun.LineItem) error {
	for _, l := range lines {
		m.Lines[l.ID] = l
	}
	return nil
}

func (m *Repository) UpdateLineVersioned(ctx context.Context, line *payrollrun.LineItem, expected int) error {
	stored, ok := m.Lines[line.ID]
	if !ok || stored.Version != expected {
		return payrollrunerrors.ErrConcurrentUpdate
	}
	m.Lines[line.ID] = *line
	return nil
}
