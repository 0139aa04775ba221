package payrollrun_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-payroll/internal/payrollrun"

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

func TestRepository_LockCompanyPeriods(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	companyID := uuid.NewString()
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("payroll_run_period:" + companyID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := mockDB.Begin()
	require.NoError(t, err)

	err = payrollrun.NewRepository(db).WithTx(tx).LockCompanyPeriods(context.Background(), companyID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_HasOverlappingPeriod(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "payroll_runs" WHERE .*period_start <= .*rejected_at IS NOT NULL.*id <> `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exclude := uuid.NewString()
	overlap, err := payrollrun.NewRepository(db).HasOverlappingPeriod(context.Background(), uuid.NewString(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), &exclude)
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}
