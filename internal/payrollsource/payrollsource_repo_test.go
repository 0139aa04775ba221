package payrollsource_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-payroll/internal/payrollcalc"
	"go-payroll/internal/payrollsource"
	payrollsourceerrors "go-payroll/internal/payrollsource/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

var march = payrollsource.Period{
	Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
}

func TestRepository_Current(t *testing.T) {
	companyID := uuid.New().String()

	t.Run("no approved config", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "payroll_rate_configs" WHERE .*company_id = `).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := payrollsource.NewRepository(db).Current(context.Background(), companyID, march.End)
		assert.ErrorIs(t, err, payrollsourceerrors.ErrRateConfigNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps jsonb rules and penalty factors", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		id := uuid.New()
		rows := sqlmock.NewRows([]string{
			"id", "company_id", "version", "status", "effective_from", "working_days",
			"tax_rules", "insurance_brackets", "absence_day_factor", "lateness_flat", "unpaid_leave_day_factor",
		}).AddRow(
			id.String(), companyID, 3, "APPROVED", march.Start, 21,
			[]byte(`[{"code":"PIT","name":"Income tax","percentage":"10","flat_amount":0,"min_gross":0,"max_gross":0}]`),
			[]byte(`[{"code":"HEALTH","name":"Health","percentage":"0","flat_amount":150,"min_gross":0,"max_gross":0}]`),
			"1.0000", int64(50), "0.5000",
		)
		mock.ExpectQuery(`SELECT \* FROM "payroll_rate_configs"`).WillReturnRows(rows)

		cfg, err := payrollsource.NewRepository(db).Current(context.Background(), companyID, march.End)
		require.NoError(t, err)

		assert.Equal(t, id.String(), cfg.ID)
		assert.Equal(t, 21, cfg.WorkingDays)
		require.Len(t, cfg.TaxRules, 1)
		assert.Equal(t, "10", cfg.TaxRules[0].Percentage.String())
		require.Len(t, cfg.InsuranceBrackets, 1)
		assert.Equal(t, int64(150), cfg.InsuranceBrackets[0].FlatAmount)
		assert.Equal(t, int64(50), cfg.Penalties.LatenessFlat)
		assert.Equal(t, "0.5", cfg.Penalties.UnpaidLeaveDayFactor.String())
		assert.NoError(t, payrollcalc.ValidateRates(cfg))
	})
}

func TestRepository_Summaries(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`FROM "attendances"`).
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "absence_days", "lateness_count"}).
			AddRow("emp-1", 2, 1).
			AddRow("emp-2", 0, 4))
	mock.ExpectQuery(`FROM "leaves"`).
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "unpaid_leave_days"}).
			AddRow("emp-2", 3).
			AddRow("emp-3", 1))

	got, err := payrollsource.NewRepository(db).Summaries(context.Background(), uuid.New().String(), march)
	require.NoError(t, err)

	assert.Equal(t, payrollcalc.Attendance{AbsenceDays: 2, LatenessCount: 1}, got["emp-1"])
	assert.Equal(t, payrollcalc.Attendance{LatenessCount: 4, UnpaidLeaveDays: 3}, got["emp-2"])
	assert.Equal(t, payrollcalc.Attendance{UnpaidLeaveDays: 1}, got["emp-3"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListPayable(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`FROM employees e`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "full_name", "department_name", "position_name",
			"bank_name", "bank_account_number", "bank_account_holder", "base_salary",
		}).
			AddRow("emp-1", "Dewi Lestari", "Finance", "Analyst", "BCA", "1234567890", "Dewi Lestari", int64(5000)).
			AddRow("emp-2", "Budi Santoso", "", "", "", "", "", int64(0)))
	mock.ExpectQuery(`FROM "employee_pay_components"`).
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "name", "kind", "amount"}).
			AddRow("emp-1", "Meal", "ALLOWANCE", int64(300)).
			AddRow("emp-1", "Overtime", "OVERTIME", int64(120)))

	got, err := payrollsource.NewRepository(db).ListPayable(context.Background(), uuid.New().String(), march)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Finance", got[0].DepartmentName)
	assert.True(t, got[0].Bank.Complete())
	assert.Len(t, got[0].Allowances, 2)
	assert.Equal(t, payrollcalc.KindOvertime, got[0].Allowances[1].Kind)
	assert.False(t, got[1].Bank.Complete())
	assert.Empty(t, got[1].Allowances)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankDetails_Complete(t *testing.T) {
	assert.True(t, payrollsource.BankDetails{BankName: "BCA", AccountNumber: "1"}.Complete())
	assert.False(t, payrollsource.BankDetails{BankName: "BCA", AccountNumber: "  "}.Complete())
	assert.False(t, payrollsource.BankDetails{AccountNumber: "1"}.Complete())
}
