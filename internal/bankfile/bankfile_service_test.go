package bankfile

import (
	"context"
	"database/sql"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	bankfileerrors "go-payroll/internal/bankfile/errors"
	"go-payroll/internal/payrollrun"
	"go-payroll/internal/payrollrun/payrollruntest"
	"go-payroll/internal/payslip"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayslipRepo struct {
	payslip.Repository
	listByRunFn func(companyID, runID string) ([]payslip.Payslip, error)
}

func (f *fakePayslipRepo) WithTx(tx *sql.Tx) payslip.Repository { return f }

func (f *fakePayslipRepo) ListByRun(ctx context.Context, companyID, runID string) ([]payslip.Payslip, error) {
	return f.listByRunFn(companyID, runID)
}

func setupBankFileTest(t *testing.T, status payrollrun.Status, items []payslip.Payslip) (*service, payrollrun.PayrollRun) {
	companyID := uuid.New()
	frozenAt := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	run := payrollrun.PayrollRun{
		ID:          uuid.New(),
		CompanyID:   companyID,
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:      status,
		FrozenAt:    &frozenAt,
	}
	runs := payrollruntest.NewRepository()
	runs.Runs[run.ID] = run

	svc := NewService(Deps{
		Runs: runs,
		Payslips: &fakePayslipRepo{listByRunFn: func(gotCompany, gotRun string) ([]payslip.Payslip, error) {
			assert.Equal(t, companyID.String(), gotCompany)
			assert.Equal(t, run.ID.String(), gotRun)
			return items, nil
		}},
		Currency: "IDR",
	}).(*service)
	return svc, run
}

func threePayslips() []payslip.Payslip {
	ids := []string{
		"11111111-1111-1111-1111-111111111111",
		"22222222-2222-2222-2222-222222222222",
		"33333333-3333-3333-3333-333333333333",
	}
	out := make([]payslip.Payslip, 0, len(ids))
	for i, id := range ids {
		out = append(out, payslip.Payslip{
			ID:                uuid.New(),
			PayslipNumber:     []string{"PS-202603-000001", "PS-202603-000002", "PS-202603-000003"}[i],
			EmployeeID:        uuid.MustParse(id),
			EmployeeName:      []string{"Ayu Lestari", "Budi Santoso", "Citra Dewi"}[i],
			BankName:          "BCA",
			BankAccountNumber: []string{"0011", "0022", "0033"}[i],
			BankAccountHolder: []string{"AYU LESTARI", "BUDI SANTOSO", "CITRA DEWI"}[i],
			FinalPaid:         []int64{510000, 420000, 395050}[i],
			Currency:          "IDR",
		})
	}
	return out
}

func TestExport_FormatsCarrySameRecords(t *testing.T) {
	svc, run := setupBankFileTest(t, payrollrun.StatusFrozen, threePayslips())
	ctx := context.Background()

	csvFile, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "csv", Bank: "BCA"})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", csvFile.ContentType)
	assert.Equal(t, "bank-transfer-bca-202603-"+run.ID.String()[:8]+".csv", csvFile.FileName)

	var fromCSV []Record
	require.NoError(t, gocsv.UnmarshalBytes(csvFile.Content, &fromCSV))

	jsonFile, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "JSON", Bank: "BCA"})
	require.NoError(t, err)
	var fromJSON struct {
		Header  Header   `json:"header"`
		Records []Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(jsonFile.Content, &fromJSON))

	xmlOut, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "xml", Bank: "BCA"})
	require.NoError(t, err)
	var fromXML xmlFile
	require.NoError(t, xml.Unmarshal(xmlOut.Content, &fromXML))

	require.Len(t, fromCSV, 3)
	assert.Equal(t, fromCSV, fromJSON.Records)
	assert.Equal(t, fromCSV, fromXML.Records)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", fromCSV[0].EmployeeID)
	assert.Equal(t, int64(395050), fromCSV[2].Amount)
	assert.Equal(t, "2026-03-01", fromCSV[0].PeriodStart)

	assert.Equal(t, 3, fromJSON.Header.RecordCount)
	assert.Equal(t, int64(1325050), fromJSON.Header.TotalAmount)
	assert.Equal(t, "BCA", fromXML.Header.Bank)
	assert.Equal(t, "2026-04-02T09:00:00Z", fromJSON.Header.FrozenAt)

	again, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "json", Bank: "BCA"})
	require.NoError(t, err)
	assert.Equal(t, jsonFile.Content, again.Content)
}

func TestExport_FixedWidth(t *testing.T) {
	svc, run := setupBankFileTest(t, payrollrun.StatusPaid, threePayslips())

	file, err := svc.Export(context.Background(), run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "fixed", Bank: "BCA"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(file.Content), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "HBCA"+strings.Repeat(" ", 17)+run.ID.String()+"2026030120260331000003000000001325050"))
	for _, l := range lines[1:4] {
		assert.Len(t, l, 1+36+35+20+34+35+15+3+20)
		assert.Equal(t, "D", l[:1])
	}
	assert.Contains(t, lines[1], "000000000510000IDR")
	assert.Equal(t, "T000003000000001325050", lines[4])
}

func TestExport_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("run not finalized", func(t *testing.T) {
		svc, run := setupBankFileTest(t, payrollrun.StatusPendingFinance, threePayslips())
		_, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "csv", Bank: "BCA"})
		assert.ErrorIs(t, err, bankfileerrors.ErrRunNotReady)
	})

	t.Run("no payslips", func(t *testing.T) {
		svc, run := setupBankFileTest(t, payrollrun.StatusFrozen, nil)
		_, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "csv", Bank: "BCA"})
		assert.ErrorIs(t, err, bankfileerrors.ErrNoPayslips)
	})

	t.Run("unknown format", func(t *testing.T) {
		svc, run := setupBankFileTest(t, payrollrun.StatusFrozen, threePayslips())
		_, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "xlsx", Bank: "BCA"})
		assert.ErrorIs(t, err, bankfileerrors.ErrInvalidFormat)
	})

	t.Run("bank required", func(t *testing.T) {
		svc, run := setupBankFileTest(t, payrollrun.StatusFrozen, threePayslips())
		_, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "csv"})
		assert.ErrorIs(t, err, bankfileerrors.ErrBankRequired)
	})

	t.Run("negative amount rejected in every format", func(t *testing.T) {
		items := threePayslips()
		items[1].FinalPaid = -50
		svc, run := setupBankFileTest(t, payrollrun.StatusFrozen, items)
		for _, f := range []string{"csv", "fixed", "xml", "json"} {
			_, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: f, Bank: "BCA"})
			assert.ErrorIs(t, err, bankfileerrors.ErrNegativeAmount, f)
		}
	})

	t.Run("account longer than the layout rejected in every format", func(t *testing.T) {
		items := threePayslips()
		items[0].BankAccountNumber = strings.Repeat("9", 40)
		svc, run := setupBankFileTest(t, payrollrun.StatusFrozen, items)
		for _, f := range []string{"csv", "fixed", "xml", "json"} {
			_, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: f, Bank: "BCA"})
			assert.ErrorIs(t, err, bankfileerrors.ErrFieldTooLong, f)
		}
	})

	t.Run("bank name longer than the layout", func(t *testing.T) {
		svc, run := setupBankFileTest(t, payrollrun.StatusFrozen, threePayslips())
		_, err := svc.Export(ctx, run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "csv", Bank: strings.Repeat("B", 21)})
		assert.ErrorIs(t, err, bankfileerrors.ErrFieldTooLong)
	})
}

func TestExport_FixedWidthKeepsIBANLengthAccount(t *testing.T) {
	items := threePayslips()
	iban := "GB82WEST12345698765432123456"
	items[0].BankAccountNumber = iban
	svc, run := setupBankFileTest(t, payrollrun.StatusFrozen, items)

	file, err := svc.Export(context.Background(), run.CompanyID.String(), run.ID.String(), ExportQuery{Format: "fixed", Bank: "BCA"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(file.Content), "\n"), "\n")
	assert.Equal(t, iban+strings.Repeat(" ", 34-len(iban)), lines[1][1+36+35+20:1+36+35+20+34])
}
