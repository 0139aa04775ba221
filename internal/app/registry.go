package app

import (
	"database/sql"

	"go-payroll/internal/bankfile"
	"go-payroll/internal/config"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrolladjustment"
	"go-payroll/internal/payrollexception"
	"go-payroll/internal/payrollrun"
	"go-payroll/internal/payrollsource"
	"go-payroll/internal/payslip"
	"go-payroll/internal/rbac"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/shared/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// modules is the service graph shared by the API and the consumer.
type modules struct {
	rbac        rbac.Service
	runs        payrollrun.Service
	exceptions  payrollexception.Service
	adjustments payrolladjustment.Service
	payslips    payslip.Service
	bankFiles   bankfile.Service
}

func buildModules(cfg config.Config, db *sql.DB, gormDB *gorm.DB, logger *zap.Logger) (*modules, error) {
	m := metrics.Default()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	runRepo := payrollrun.NewRepository(gormDB)
	exceptionRepo := payrollexception.NewRepository(gormDB)
	adjustmentRepo := payrolladjustment.NewRepository(gormDB)
	payslipRepo := payslip.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	sources := payrollsource.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return nil, err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)

	// --- Services ---
	guard := payrollrun.NewRunGuard(runRepo)

	runService := payrollrun.NewService(payrollrun.Deps{
		DB:   db,
		Repo: runRepo,
		Sources: payrollrun.Sources{
			Employees:   sources,
			Attendance:  sources,
			PreRunItems: sources,
			Rates:       sources,
			PreviousNet: sources,
		},
		Exceptions:  exceptionRepo,
		Adjustments: payrolladjustment.NewPendingCounter(adjustmentRepo),
		Outbox:      outboxRepo,
		Policy:      cfg.Payroll,
		Metrics:     m,
	}, logger)

	exceptionService := payrollexception.NewService(db, exceptionRepo, guard, logger)

	adjustmentService := payrolladjustment.NewService(payrolladjustment.Deps{
		DB:               db,
		Repo:             adjustmentRepo,
		Runs:             runRepo,
		Guard:            guard,
		RequiresApproval: cfg.Payroll.AdjustmentRequiresApproval,
		Metrics:          m,
	}, logger)

	payslipService := payslip.NewService(payslip.Deps{
		DB:         db,
		Repo:       payslipRepo,
		Runs:       runRepo,
		Exceptions: exceptionRepo,
		Counter:    counterRepo,
		Outbox:     outboxRepo,
		Policy:     cfg.Payroll,
		Metrics:    m,
	}, logger)

	bankFileService := bankfile.NewService(bankfile.Deps{
		Runs:     runRepo,
		Payslips: payslipRepo,
		Currency: cfg.Payroll.Currency,
		Metrics:  m,
	}, logger)

	return &modules{
		rbac:        rbacService,
		runs:        runService,
		exceptions:  exceptionService,
		adjustments: adjustmentService,
		payslips:    payslipService,
		bankFiles:   bankFileService,
	}, nil
}
