package payrollsource

import (
	"context"
	"errors"
	"time"

	"go-payroll/internal/payrollcalc"
	payrollsourceerrors "go-payroll/internal/payrollsource/errors"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

// EmployeeDirectory resolves the employees payable in a period.
type EmployeeDirectory interface {
	ListPayable(ctx context.Context, companyID string, period Period) ([]Employee, error)
}

// AttendanceSource aggregates absences, lateness and unpaid leave per employee.
type AttendanceSource interface {
	Summaries(ctx context.Context, companyID string, period Period) (map[string]payrollcalc.Attendance, error)
}

type PreRunItemSource interface {
	ListForPeriod(ctx context.Context, companyID string, period Period) ([]PreRunItem, error)
}

type RateConfigProvider interface {
	Current(ctx context.Context, companyID string, asOf time.Time) (payrollcalc.RateConfig, error)
}

// PreviousNetSource returns each employee's net pay in the latest frozen or paid run ending before a date.
type PreviousNetSource interface {
	PreviousNet(ctx context.Context, companyID string, before time.Time) (map[string]int64, error)
}

// Repository reads collaborator-owned tables. It never writes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListPayable(ctx context.Context, companyID string, period Period) ([]Employee, error) {
	var rows []employeeRow
	err := r.db.WithContext(ctx).
		Table("employees e").
		Select(`e.id::text AS id, e.full_name,
			COALESCE(d.name, '') AS department_name,
			COALESCE(p.name, '') AS position_name,
			COALESCE(e.bank_name, '') AS bank_name,
			COALESCE(e.bank_account_number, '') AS bank_account_number,
			COALESCE(e.bank_account_holder, '') AS bank_account_holder,
			COALESCE(s.base_salary, 0) AS base_salary`).
		Joins("LEFT JOIN departments d ON d.id = e.department_id").
		Joins("LEFT JOIN positions p ON p.id = e.position_id").
		Joins(`LEFT JOIN LATERAL (
			SELECT es.base_salary FROM employee_salaries es
			WHERE es.employee_id = e.id AND es.effective_date <= ?
			ORDER BY es.effective_date DESC LIMIT 1
		) s ON true`, period.End).
		Scopes(tenant.ScopeTable("e", companyID)).
		Where("e.deleted_at IS NULL").
		Where("e.hired_at IS NULL OR e.hired_at <= ?", period.End).
		Where("e.terminated_at IS NULL OR e.terminated_at >= ?", period.Start).
		Order("e.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var components []payComponentRow
	err = r.db.WithContext(ctx).
		Table("employee_pay_components").
		Select("employee_id::text AS employee_id, name, kind, amount").
		Scopes(tenant.Scope(companyID)).
		Where("deleted_at IS NULL").
		Where("effective_from <= ?", period.End).
		Where("effective_to IS NULL OR effective_to >= ?", period.Start).
		Order("employee_id, kind, name").
		Scan(&components).Error
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[string][]payrollcalc.Allowance, len(rows))
	for _, c := range components {
		byEmployee[c.EmployeeID] = append(byEmployee[c.EmployeeID], payrollcalc.Allowance{
			Name:   c.Name,
			Kind:   payrollcalc.ComponentKind(c.Kind),
			Amount: c.Amount,
		})
	}

	employees := make([]Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, Employee{
			ID:             row.ID,
			Name:           row.FullName,
			DepartmentName: row.DepartmentName,
			PositionName:   row.PositionName,
			BaseSalary:     row.BaseSalary,
			Allowances:     byEmployee[row.ID],
			Bank: BankDetails{
				BankName:      row.BankName,
				AccountNumber: row.BankAccountNumber,
				AccountHolder: row.BankAccountHolder,
			},
		})
	}
	return employees, nil
}

func (r *Repository) Summaries(ctx context.Context, companyID string, period Period) (map[string]payrollcalc.Attendance, error) {
	var absences []attendanceRow
	err := r.db.WithContext(ctx).
		Table("attendances").
		Select(`employee_id::text AS employee_id,
			COUNT(*) FILTER (WHERE status = 'ABSENT') AS absence_days,
			COUNT(*) FILTER (WHERE status = 'LATE') AS lateness_count`).
		Scopes(tenant.Scope(companyID)).
		Where("deleted_at IS NULL").
		Where("attendance_date BETWEEN ? AND ?", period.Start, period.End).
		Group("employee_id").
		Scan(&absences).Error
	if err != nil {
		return nil, err
	}

	var unpaid []attendanceRow
	err = r.db.WithContext(ctx).
		Table("leaves").
		Select(`employee_id::text AS employee_id,
			COALESCE(SUM(LEAST(end_date, ?::date) - GREATEST(start_date, ?::date) + 1), 0) AS unpaid_leave_days`,
			period.End, period.Start).
		Scopes(tenant.Scope(companyID)).
		Where("deleted_at IS NULL").
		Where("status = ?", "APPROVED").
		Where("leave_type = ?", "UNPAID").
		Where("start_date <= ? AND end_date >= ?", period.End, period.Start).
		Group("employee_id").
		Scan(&unpaid).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]payrollcalc.Attendance, len(absences))
	for _, a := range absences {
		out[a.EmployeeID] = payrollcalc.Attendance{AbsenceDays: a.AbsenceDays, LatenessCount: a.LatenessCount}
	}
	for _, u := range unpaid {
		att := out[u.EmployeeID]
		att.UnpaidLeaveDays = u.UnpaidLeaveDays
		out[u.EmployeeID] = att
	}
	return out, nil
}

func (r *Repository) ListForPeriod(ctx context.Context, companyID string, period Period) ([]PreRunItem, error) {
	var items []PreRunItem
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("effective_date BETWEEN ? AND ?", period.Start, period.End).
		Order("employee_id, kind, created_at").
		Find(&items).Error
	return items, err
}

func (r *Repository) Current(ctx context.Context, companyID string, asOf time.Time) (payrollcalc.RateConfig, error) {
	var rec RateConfigRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", RateConfigStatusApproved).
		Where("effective_from <= ?", asOf).
		Order("effective_from DESC, version DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return payrollcalc.RateConfig{}, payrollsourceerrors.ErrRateConfigNotFound
		}
		return payrollcalc.RateConfig{}, err
	}
	return rec.ToRateConfig(), nil
}

func (r *Repository) PreviousNet(ctx context.Context, companyID string, before time.Time) (map[string]int64, error) {
	var rows []previousNetRow
	err := r.db.WithContext(ctx).
		Raw(`
SELECT DISTINCT ON (li.employee_id) li.employee_id::text AS employee_id, li.net AS net_salary
FROM payroll_line_items li
JOIN payroll_runs pr ON pr.id = li.run_id AND li.draft_version = pr.draft_version
WHERE pr.company_id = ?
	AND pr.status IN ('FROZEN', 'PAID')
	AND pr.period_end < ?
ORDER BY li.employee_id, pr.period_end DESC
`, companyID, before).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.EmployeeID] = row.NetSalary
	}
	return out, nil
}
