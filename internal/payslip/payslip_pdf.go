package payslip

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const pdfContentType = "application/pdf"

// formatAmount renders minor units with two decimals, e.g. 510000 -> "5100.00 IDR".
func formatAmount(minor int64, currency string) string {
	return decimal.New(minor, -2).StringFixed(2) + " " + currency
}

func renderPDF(p Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+p.PayslipNumber, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payslip "+p.PayslipNumber)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		"Employee: " + p.EmployeeName,
		fmt.Sprintf("Period: %s to %s", p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02")),
		fmt.Sprintf("Bank: %s %s (%s)", p.BankName, p.BankAccountNumber, p.BankAccountHolder),
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	row := func(label string, amount int64) {
		pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, formatAmount(amount, p.Currency), "", 1, "R", false, 0, "")
	}
	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
	}

	section("Earnings")
	row("Base salary", p.BaseSalary)
	for _, a := range p.Allowances {
		row(a.Name, a.Amount)
	}
	if p.SigningBonus != 0 {
		row("Signing bonus", p.SigningBonus)
	}
	if p.TerminationBenefit != 0 {
		row("Termination benefit", p.TerminationBenefit)
	}
	row("Gross", p.Gross)

	section("Deductions")
	for _, d := range p.Deductions {
		row(d.Name, d.Amount)
	}
	for _, pen := range p.Penalties {
		row(fmt.Sprintf("Penalty %s x%d", pen.Kind, pen.Quantity), pen.Amount)
	}
	row("Total deductions", p.DeductionTotal+p.PenaltyTotal)

	section("Summary")
	row("Net", p.Net)
	if p.AdjustmentTotal != 0 {
		row("Adjustments", p.AdjustmentTotal)
	}
	pdf.SetFont("Helvetica", "B", 12)
	row("Final paid", p.FinalPaid)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
