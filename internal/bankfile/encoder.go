package bankfile

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
)

type encoder struct {
	contentType string
	extension   string
	encode      func(h Header, records []Record) ([]byte, error)
}

var encoders = map[Format]encoder{
	FormatCSV:   {contentType: "text/csv", extension: "csv", encode: encodeCSV},
	FormatFixed: {contentType: "text/plain", extension: "txt", encode: encodeFixed},
	FormatXML:   {contentType: "application/xml", extension: "xml", encode: encodeXML},
	FormatJSON:  {contentType: "application/json", extension: "json", encode: encodeJSON},
}

// encodeCSV writes one header row then the records; file level metadata lives in the file name.
func encodeCSV(_ Header, records []Record) ([]byte, error) {
	return gocsv.MarshalBytes(records)
}

type xmlFile struct {
	XMLName xml.Name `xml:"BankTransfer"`
	Header
	Records []Record `xml:"Transfer"`
}

func encodeXML(h Header, records []Record) ([]byte, error) {
	body, err := xml.MarshalIndent(xmlFile{Header: h, Records: records}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

type jsonFile struct {
	Header  Header   `json:"header"`
	Records []Record `json:"records"`
}

func encodeJSON(h Header, records []Record) ([]byte, error) {
	return json.MarshalIndent(jsonFile{Header: h, Records: records}, "", "  ")
}

// Fixed width layout, one line per record:
//
//	H bank(20) run id(36) period start(8) period end(8) count(6) total(15)
//	D employee id(36) name(35) bank(20) account(34) holder(35) amount(15) currency(3) payslip(20)
//	T count(6) total(15)
//
// Text is left aligned and space padded, numbers right aligned and zero padded. Widths are checked
// by validateFile before any encoder runs.
func encodeFixed(h Header, records []Record) ([]byte, error) {
	var buf bytes.Buffer
	compact := func(date string) string { return strings.ReplaceAll(date, "-", "") }

	buf.WriteString("H" + text(h.Bank, widthBank) + text(h.RunID, widthID) + text(compact(h.PeriodStart), 8) +
		text(compact(h.PeriodEnd), 8) + number(int64(h.RecordCount), widthCount) + number(h.TotalAmount, widthAmount) + "\n")
	for _, r := range records {
		buf.WriteString("D" + text(r.EmployeeID, widthID) + text(r.EmployeeName, widthName) + text(r.BankName, widthBank) +
			text(r.AccountNumber, widthAccount) + text(r.AccountHolder, widthHolder) + number(r.Amount, widthAmount) +
			text(r.Currency, widthCurrency) + text(r.PayslipNumber, widthPayslip) + "\n")
	}
	buf.WriteString("T" + number(int64(h.RecordCount), widthCount) + number(h.TotalAmount, widthAmount) + "\n")
	return buf.Bytes(), nil
}

func text(v string, width int) string {
	return v + strings.Repeat(" ", width-utf8.RuneCountInString(v))
}

func number(v int64, width int) string {
	return fmt.Sprintf("%0*d", width, v)
}
