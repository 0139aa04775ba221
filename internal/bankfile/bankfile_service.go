package bankfile

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	bankfileerrors "go-payroll/internal/bankfile/errors"
	"go-payroll/internal/payrollrun"
	payrollrunerrors "go-payroll/internal/payrollrun/errors"
	"go-payroll/internal/payslip"
	"go-payroll/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

type ExportQuery struct {
	Format string `form:"format"`
	Bank   string `form:"bank"`
}

// File is an encoded transfer file ready to stream.
type File struct {
	FileName    string
	ContentType string
	Content     []byte
}

type Deps struct {
	Runs     payrollrun.Repository
	Payslips payslip.Repository
	Currency string
	Metrics  *metrics.Payroll
}

type Service interface {
	Export(ctx context.Context, companyID, runID string, q ExportQuery) (File, error)
}

type service struct {
	runs     payrollrun.Repository
	payslips payslip.Repository
	currency string
	metrics  *metrics.Payroll
	logger   *zap.Logger
}

func NewService(deps Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("bankfile.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("bankfile.service")
	}
	return &service{
		runs:     deps.Runs,
		payslips: deps.Payslips,
		currency: deps.Currency,
		metrics:  deps.Metrics,
		logger:   l,
	}
}

// Export is read only; nothing about the run or its payslips changes.
func (s *service) Export(ctx context.Context, companyID, runID string, q ExportQuery) (File, error) {
	s.logger.Debug("bank file export requested",
		zap.String("run_id", runID),
		zap.String("company_id", companyID),
		zap.String("format", q.Format),
		zap.String("bank", q.Bank),
	)

	if _, err := uuid.Parse(runID); err != nil {
		return File{}, payrollrunerrors.ErrInvalidRunID
	}
	format := Format(strings.ToLower(strings.TrimSpace(q.Format)))
	if format == "" {
		format = FormatCSV
	}
	enc, ok := encoders[format]
	if !ok {
		return File{}, bankfileerrors.ErrInvalidFormat
	}
	bank := strings.TrimSpace(q.Bank)
	if bank == "" {
		return File{}, bankfileerrors.ErrBankRequired
	}

	run, err := s.runs.FindByIDAndCompany(ctx, companyID, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return File{}, payrollrunerrors.ErrRunNotFound
		}
		s.logger.Error("bank file run lookup failed", zap.String("run_id", runID), zap.Error(err))
		return File{}, err
	}
	if !run.Status.Finalized() {
		s.logger.Warn("bank file run not ready", zap.String("run_id", runID), zap.String("status", string(run.Status)))
		return File{}, bankfileerrors.ErrRunNotReady.WithDetails(map[string]string{"status": string(run.Status)})
	}

	items, err := s.payslips.ListByRun(ctx, companyID, runID)
	if err != nil {
		s.logger.Error("bank file payslip lookup failed", zap.String("run_id", runID), zap.Error(err))
		return File{}, err
	}
	if len(items) == 0 {
		return File{}, bankfileerrors.ErrNoPayslips
	}

	header, records := buildFile(*run, bank, s.currency, items)
	if err := validateFile(header, records); err != nil {
		s.logger.Warn("bank file records rejected", zap.String("run_id", runID), zap.Error(err))
		return File{}, err
	}
	content, err := enc.encode(header, records)
	if err != nil {
		s.logger.Error("bank file encode failed", zap.String("run_id", runID), zap.String("format", string(format)), zap.Error(err))
		return File{}, err
	}

	s.metrics.BankFileExported(string(format))
	s.logger.Info("bank file export success",
		zap.String("run_id", runID),
		zap.String("format", string(format)),
		zap.Int("records", len(records)),
	)

	return File{
		FileName: fmt.Sprintf("bank-transfer-%s-%s-%s.%s",
			strings.ToLower(strings.Trim(unsafeFileChars.ReplaceAllString(bank, "-"), "-")),
			run.PeriodEnd.Format("200601"),
			run.ID.String()[:8],
			enc.extension,
		),
		ContentType: enc.contentType,
		Content:     content,
	}, nil
}
