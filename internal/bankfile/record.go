package bankfile

import (
	"strconv"
	"time"
	"unicode/utf8"

	bankfileerrors "go-payroll/internal/bankfile/errors"
	"go-payroll/internal/payrollrun"
	"go-payroll/internal/payslip"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatFixed Format = "fixed"
	FormatXML   Format = "xml"
	FormatJSON  Format = "json"
)

const dateLayout = "2006-01-02"

// Header describes the whole transfer file. Bank is informational and never filters records.
type Header struct {
	Bank        string `json:"bank" xml:"bank,attr"`
	RunID       string `json:"run_id" xml:"runId,attr"`
	PeriodStart string `json:"period_start" xml:"periodStart,attr"`
	PeriodEnd   string `json:"period_end" xml:"periodEnd,attr"`
	Currency    string `json:"currency" xml:"currency,attr"`
	RecordCount int    `json:"record_count" xml:"recordCount,attr"`
	TotalAmount int64  `json:"total_amount" xml:"totalAmount,attr"`
	FrozenAt    string `json:"frozen_at,omitempty" xml:"frozenAt,attr,omitempty"`
}

// Record is one transfer line. Amount is the final paid value in minor units.
type Record struct {
	EmployeeID    string `csv:"employee_id" json:"employee_id" xml:"EmployeeID"`
	EmployeeName  string `csv:"employee_name" json:"employee_name" xml:"EmployeeName"`
	BankName      string `csv:"bank_name" json:"bank_name" xml:"BankName"`
	AccountNumber string `csv:"account_number" json:"account_number" xml:"AccountNumber"`
	AccountHolder string `csv:"account_holder" json:"account_holder" xml:"AccountHolder"`
	Amount        int64  `csv:"amount" json:"amount" xml:"Amount"`
	Currency      string `csv:"currency" json:"currency" xml:"Currency"`
	RunID         string `csv:"run_id" json:"run_id" xml:"RunID"`
	PeriodStart   string `csv:"period_start" json:"period_start" xml:"PeriodStart"`
	PeriodEnd     string `csv:"period_end" json:"period_end" xml:"PeriodEnd"`
	PayslipNumber string `csv:"payslip_number" json:"payslip_number" xml:"PayslipNumber"`
}

// buildFile keeps the payslip order, which the repository sorts by employee id then number.
func buildFile(run payrollrun.PayrollRun, bank, currency string, payslips []payslip.Payslip) (Header, []Record) {
	records := make([]Record, 0, len(payslips))
	var total int64
	for _, p := range payslips {
		c := p.Currency
		if c == "" {
			c = currency
		}
		records = append(records, Record{
			EmployeeID:    p.EmployeeID.String(),
			EmployeeName:  p.EmployeeName,
			BankName:      p.BankName,
			AccountNumber: p.BankAccountNumber,
			AccountHolder: p.BankAccountHolder,
			Amount:        p.FinalPaid,
			Currency:      c,
			RunID:         run.ID.String(),
			PeriodStart:   run.PeriodStart.Format(dateLayout),
			PeriodEnd:     run.PeriodEnd.Format(dateLayout),
			PayslipNumber: p.PayslipNumber,
		})
		total += p.FinalPaid
	}

	header := Header{
		Bank:        bank,
		RunID:       run.ID.String(),
		PeriodStart: run.PeriodStart.Format(dateLayout),
		PeriodEnd:   run.PeriodEnd.Format(dateLayout),
		Currency:    currency,
		RecordCount: len(records),
		TotalAmount: total,
	}
	if run.FrozenAt != nil {
		header.FrozenAt = run.FrozenAt.UTC().Format(time.RFC3339)
	}
	return header, records
}

// Column widths of the fixed layout. Every format enforces them, so the accepted record set never
// depends on the format.
const (
	widthBank      = 20
	widthID        = 36
	widthName      = 35
	widthAccount   = 34
	widthHolder    = 35
	widthAmount    = 15
	widthCurrency  = 3
	widthPayslip   = 20
	widthCount     = 6
	maxRecordCount = 999999
)

func validateFile(h Header, records []Record) error {
	if utf8.RuneCountInString(h.Bank) > widthBank {
		return bankfileerrors.ErrFieldTooLong.WithDetails(map[string]string{
			"field": "bank",
			"limit": strconv.Itoa(widthBank),
		})
	}
	if h.RecordCount > maxRecordCount || len(strconv.FormatInt(h.TotalAmount, 10)) > widthAmount {
		return bankfileerrors.ErrTotalTooLarge
	}

	for _, r := range records {
		if r.Amount < 0 {
			return bankfileerrors.ErrNegativeAmount.WithDetails(map[string]string{
				"employee_id":    r.EmployeeID,
				"payslip_number": r.PayslipNumber,
			})
		}
		fields := []struct {
			name  string
			value string
			width int
		}{
			{"employee_name", r.EmployeeName, widthName},
			{"bank_name", r.BankName, widthBank},
			{"account_number", r.AccountNumber, widthAccount},
			{"account_holder", r.AccountHolder, widthHolder},
			{"currency", r.Currency, widthCurrency},
			{"payslip_number", r.PayslipNumber, widthPayslip},
		}
		for _, f := range fields {
			if utf8.RuneCountInString(f.value) > f.width {
				return bankfileerrors.ErrFieldTooLong.WithDetails(map[string]string{
					"field":       f.name,
					"employee_id": r.EmployeeID,
					"limit":       strconv.Itoa(f.width),
				})
			}
		}
	}
	return nil
}
